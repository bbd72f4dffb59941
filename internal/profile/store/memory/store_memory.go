package memory

import (
	"context"
	"sync"

	"profileguard/internal/profile/models"
	"profileguard/internal/profile/store"
	id "profileguard/pkg/domain"
	dErrors "profileguard/pkg/domain-errors"
)

type account struct {
	quota models.AccountQuotaInfo
	set   models.ReferenceSet
}

// InMemoryStore keeps reference sets and quota per account. Reference sets are
// immutable values, so reads hand them out without copying.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*account
}

func New() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[id.AccountID]*account),
	}
}

func (s *InMemoryStore) GetReferenceSet(_ context.Context, accountID id.AccountID) (models.ReferenceSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if acc, ok := s.accounts[accountID]; ok {
		return acc.set, nil
	}
	return models.Empty(), nil
}

func (s *InMemoryStore) GetQuotaInfo(_ context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if acc, ok := s.accounts[accountID]; ok {
		return acc.quota, nil
	}
	return models.DefaultQuotaInfo(), nil
}

func (s *InMemoryStore) CreateReferenceIfAbsent(_ context.Context, accountID id.AccountID, ref models.IdentityReference) (models.CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountLocked(accountID)
	next, res := store.Admit(acc.set, acc.quota, ref)
	if res.Created {
		acc.set = next
	}
	return res, nil
}

// SetQuotaInfo replaces the plan and purchased slots of an account, creating
// the account record when missing.
func (s *InMemoryStore) SetQuotaInfo(_ context.Context, accountID id.AccountID, info models.AccountQuotaInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accountLocked(accountID).quota = info
	return nil
}

// Seed installs a reference set as-is. It exists for fixtures that need a
// legacy single set or a set larger than the current quota.
func (s *InMemoryStore) Seed(accountID id.AccountID, set models.ReferenceSet, info models.AccountQuotaInfo) error {
	if set == nil {
		return dErrors.New(dErrors.CodeBadRequest, "reference set is required")
	}
	if err := info.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[accountID] = &account{quota: info, set: set}
	return nil
}

func (s *InMemoryStore) accountLocked(accountID id.AccountID) *account {
	acc, ok := s.accounts[accountID]
	if !ok {
		acc = &account{quota: models.DefaultQuotaInfo(), set: models.Empty()}
		s.accounts[accountID] = acc
	}
	return acc
}
