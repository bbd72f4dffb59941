// Package guard decides whether an account may run a privileged action on an
// artifact, combining the ownership match, the quota arithmetic and the
// reference writer.
//
// Missing or ambiguous input fails open. Repository errors fail closed with a
// generic message and never raise an upgrade or blocked prompt.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"profileguard/internal/profile/matcher"
	"profileguard/internal/profile/metrics"
	"profileguard/internal/profile/models"
	"profileguard/internal/profile/ports"
	"profileguard/internal/profile/quota"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/audit"
)

type (
	Repository     = ports.Repository
	Prompter       = ports.Prompter
	AuditPublisher = ports.AuditPublisher
)

// ReferenceWriter is the subset of the writer the guard needs.
type ReferenceWriter interface {
	Store(ctx context.Context, accountID id.AccountID, identity models.ArtifactIdentity, source id.Source) (models.StoreResult, error)
}

const (
	reasonUnauthenticated = "not signed in"
	reasonFirstReference  = "first profile reference stored"
	reasonSlotConsumed    = "additional profile slot used"
	reasonNeedsUpgrade    = "a paid plan is required to use another profile"
	reasonLimitReached    = "all profile slots are in use"
)

type Service struct {
	repo           Repository
	writer         ReferenceWriter
	prompter       Prompter
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	mu          sync.Mutex
	checking    map[id.AccountID]struct{}
	lastBlocked map[id.AccountID]models.ArtifactIdentity
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPrompter(prompter Prompter) Option {
	return func(s *Service) {
		if prompter != nil {
			s.prompter = prompter
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func New(repo Repository, writer ReferenceWriter, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("reference writer is required")
	}

	svc := &Service{
		repo:        repo,
		writer:      writer,
		prompter:    ports.NopPrompter{},
		tracer:      otel.Tracer("profileguard/internal/profile/guard"),
		checking:    make(map[id.AccountID]struct{}),
		lastBlocked: make(map[id.AccountID]models.ArtifactIdentity),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Decide evaluates one privileged action. The result is always a decision;
// infrastructure failures surface as a fail-closed decision, not an error.
func (s *Service) Decide(ctx context.Context, accountID id.AccountID, artifact models.ArtifactIdentity, source id.Source) models.Decision {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "guard.Decide", trace.WithAttributes(
		attribute.String("account_id", accountID.String()),
		attribute.String("source", source.String()),
	))
	defer span.End()

	decision := s.decide(ctx, accountID, artifact, source)

	span.SetAttributes(
		attribute.String("outcome", string(decision.Outcome)),
		attribute.Bool("allowed", decision.Allowed),
	)
	if decision.Outcome == models.OutcomeUnavailable {
		span.SetStatus(codes.Error, "repository unavailable")
	}
	s.metrics.IncrementOutcome(string(decision.Outcome), decision.Allowed)
	s.metrics.ObserveDecideLatency(time.Since(start))
	return decision
}

func (s *Service) decide(ctx context.Context, accountID id.AccountID, artifact models.ArtifactIdentity, source id.Source) models.Decision {
	if accountID.IsNil() {
		return models.AllowUnverifiable(models.OutcomeUnauthenticated, reasonUnauthenticated)
	}
	if !artifact.HasName() {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "artifact has no identifying name, allowing",
				"account_id", accountID.String(),
				"source", source.String(),
			)
		}
		return models.AllowUnverifiable(models.OutcomeNoIdentity, matcher.ReasonNoIdentity)
	}
	if artifact.IsSample() {
		return models.Allow(models.OutcomeSampleProfile, matcher.ReasonSampleProfile)
	}

	if !s.beginCheck(accountID) {
		return models.Pending()
	}
	defer s.endCheck(accountID)
	s.metrics.CheckStarted()
	defer s.metrics.CheckFinished()

	set, info, err := s.load(ctx, accountID)
	if err != nil {
		return s.unavailable(ctx, accountID, source, "load", err)
	}

	if set.Kind() == models.SetKindEmpty {
		res, err := s.writer.Store(ctx, accountID, artifact, source)
		if err != nil {
			return s.unavailable(ctx, accountID, source, "store_first", err)
		}
		switch {
		case res.Succeeded():
			return models.Allow(models.OutcomeFirstReference, reasonFirstReference)
		case res.InProgress:
			return models.Pending()
		default:
			// A concurrent writer on another instance filled the slot first.
			return s.block(ctx, accountID, artifact, source, reasonLimitReached)
		}
	}

	match := matcher.Match(artifact, set)
	if match.IsOwner {
		return models.Allow(models.OutcomeOwner, match.Reason)
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventIdentityMismatch, accountID,
		"source", source.String(),
		"reason", match.Reason,
		"plan_tier", info.PlanTier.String(),
	)

	if !info.PlanTier.IsPaid() {
		s.prompter.OnNeedsUpgrade(ctx, accountID)
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventUpgradeRequired, accountID,
			"source", source.String(),
			"decision", string(models.OutcomeNeedsUpgrade),
		)
		return models.DenyNeedsUpgrade(reasonNeedsUpgrade)
	}

	if capacity := quota.ForSet(info, set); !capacity.Exhausted() {
		res, err := s.writer.Store(ctx, accountID, artifact, source)
		if err != nil {
			return s.unavailable(ctx, accountID, source, "store_additional", err)
		}
		if res.Succeeded() {
			return models.Allow(models.OutcomeSlotConsumed, reasonSlotConsumed)
		}
	}

	return s.block(ctx, accountID, artifact, source, match.Reason)
}

// LastBlocked returns the identity most recently rejected for the account.
func (s *Service) LastBlocked(accountID id.AccountID) (models.ArtifactIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocked, ok := s.lastBlocked[accountID]
	return blocked, ok
}

// load reads the reference set and quota in parallel. Both are read fresh on
// every decision.
func (s *Service) load(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, models.AccountQuotaInfo, error) {
	var (
		set  models.ReferenceSet
		info models.AccountQuotaInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		defer func() { s.metrics.ObserveRepositoryLatency("get_reference_set", time.Since(start)) }()
		var err error
		set, err = s.repo.GetReferenceSet(gctx, accountID)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		defer func() { s.metrics.ObserveRepositoryLatency("get_quota_info", time.Since(start)) }()
		var err error
		info, err = s.repo.GetQuotaInfo(gctx, accountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.AccountQuotaInfo{}, err
	}

	if set == nil {
		set = models.Empty()
	}
	return set, info, nil
}

func (s *Service) block(ctx context.Context, accountID id.AccountID, artifact models.ArtifactIdentity, source id.Source, reason string) models.Decision {
	s.mu.Lock()
	s.lastBlocked[accountID] = artifact
	s.mu.Unlock()

	s.prompter.OnBlocked(ctx, accountID, artifact)
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventProfileLimitReached, accountID,
		"source", source.String(),
		"decision", string(models.OutcomeQuotaExceeded),
		"reason", reason,
	)
	return models.DenyQuotaExceeded(artifact, reason)
}

func (s *Service) unavailable(ctx context.Context, accountID id.AccountID, source id.Source, step string, err error) models.Decision {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "profile guard failed closed",
			"account_id", accountID.String(),
			"source", source.String(),
			"step", step,
			"error", err,
		)
	}
	trace.SpanFromContext(ctx).RecordError(err)
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventGuardUnavailable, accountID,
		"source", source.String(),
		"decision", string(models.OutcomeUnavailable),
	)
	return models.DenyUnavailable()
}

func (s *Service) beginCheck(accountID id.AccountID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.checking[accountID]; busy {
		return false
	}
	s.checking[accountID] = struct{}{}
	return true
}

func (s *Service) endCheck(accountID id.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checking, accountID)
}
