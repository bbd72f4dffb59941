// Package breaker guards a repository with a circuit breaker so that an
// unreachable backend is reported as unavailable without waiting on it.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"profileguard/internal/profile/models"
	"profileguard/internal/profile/ports"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/circuit"
	"profileguard/pkg/platform/sentinel"
)

// Backend is a repository that also administers quota.
type Backend interface {
	ports.Repository
	ports.AccountAdmin
}

// Store forwards to the wrapped backend while the breaker admits calls.
type Store struct {
	next    Backend
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func New(next Backend, breaker *circuit.Breaker, logger *slog.Logger) (*Store, error) {
	if next == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if breaker == nil {
		return nil, fmt.Errorf("circuit breaker is required")
	}
	return &Store{next: next, breaker: breaker, logger: logger}, nil
}

func (s *Store) GetReferenceSet(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, error) {
	if !s.breaker.Allow() {
		return nil, s.rejected()
	}
	set, err := s.next.GetReferenceSet(ctx, accountID)
	s.record(ctx, err)
	return set, err
}

func (s *Store) GetQuotaInfo(ctx context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error) {
	if !s.breaker.Allow() {
		return models.AccountQuotaInfo{}, s.rejected()
	}
	info, err := s.next.GetQuotaInfo(ctx, accountID)
	s.record(ctx, err)
	return info, err
}

func (s *Store) CreateReferenceIfAbsent(ctx context.Context, accountID id.AccountID, ref models.IdentityReference) (models.CreateResult, error) {
	if !s.breaker.Allow() {
		return models.CreateResult{}, s.rejected()
	}
	res, err := s.next.CreateReferenceIfAbsent(ctx, accountID, ref)
	s.record(ctx, err)
	return res, err
}

func (s *Store) SetQuotaInfo(ctx context.Context, accountID id.AccountID, info models.AccountQuotaInfo) error {
	if !s.breaker.Allow() {
		return s.rejected()
	}
	err := s.next.SetQuotaInfo(ctx, accountID, info)
	s.record(ctx, err)
	return err
}

func (s *Store) rejected() error {
	return fmt.Errorf("%s circuit open: %w", s.breaker.Name(), sentinel.ErrUnavailable)
}

// record feeds the breaker. Only unavailability counts as a failure; a
// cancelled request or a bad record says nothing about backend health.
func (s *Store) record(ctx context.Context, err error) {
	if err != nil && !errors.Is(err, sentinel.ErrUnavailable) {
		s.breaker.Release()
		return
	}
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed && s.logger != nil {
			s.logger.InfoContext(ctx, "repository circuit closed", "backend", s.breaker.Name())
		}
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened && s.logger != nil {
		s.logger.WarnContext(ctx, "repository circuit opened", "backend", s.breaker.Name(), "error", err)
	}
}
