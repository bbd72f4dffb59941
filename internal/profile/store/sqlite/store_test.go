package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
)

// StoreSuite runs against a real SQLite file; the driver is pure Go so no
// container is needed.
type StoreSuite struct {
	suite.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	st, err := Open(context.Background(), filepath.Join(s.T().TempDir(), "profile.db"))
	s.Require().NoError(err)
	s.store = st
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func newRef(name string) models.IdentityReference {
	return models.ArtifactIdentity{Name: name, Phone: "555-0100"}.
		Reference(id.Source("upload"), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func (s *StoreSuite) TestOpen_RequiresPath() {
	_, err := Open(context.Background(), "  ")
	s.Require().Error(err)
}

func (s *StoreSuite) TestOpen_IsIdempotent() {
	path := filepath.Join(s.T().TempDir(), "reopen.db")
	first, err := Open(context.Background(), path)
	s.Require().NoError(err)
	s.Require().NoError(first.Close())

	second, err := Open(context.Background(), path)
	s.Require().NoError(err)
	s.Require().NoError(second.Close())
}

func (s *StoreSuite) TestUnknownAccount() {
	ctx := context.Background()
	set, err := s.store.GetReferenceSet(ctx, id.AccountID("missing"))
	s.Require().NoError(err)
	s.Equal(models.SetKindEmpty, set.Kind())

	info, err := s.store.GetQuotaInfo(ctx, id.AccountID("missing"))
	s.Require().NoError(err)
	s.Equal(models.DefaultQuotaInfo(), info)
}

func (s *StoreSuite) TestCreateReferenceIfAbsent() {
	ctx := context.Background()
	account := id.AccountID("acct-1")

	res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("Jane Roe"))
	s.Require().NoError(err)
	s.True(res.Created)

	s.Run("stored reference keeps its stamps", func() {
		set, err := s.store.GetReferenceSet(ctx, account)
		s.Require().NoError(err)
		s.Require().Equal(1, set.Len())
		stored := set.References()[0]
		s.Equal("Jane Roe", stored.Name)
		s.Equal("555-0100", stored.Phone)
		s.Equal(id.Source("upload"), stored.Source)
		s.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), stored.StoredAt)
		s.False(stored.ID.IsNil())
	})

	s.Run("duplicate name", func() {
		res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("jane ROE "))
		s.Require().NoError(err)
		s.True(res.Existing)
	})

	s.Run("capacity", func() {
		res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("Bob"))
		s.Require().NoError(err)
		s.True(res.LimitReached)

		s.Require().NoError(s.store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanBasic, PurchasedSlots: 1}))
		res, err = s.store.CreateReferenceIfAbsent(ctx, account, newRef("Bob"))
		s.Require().NoError(err)
		s.True(res.Created)

		set, err := s.store.GetReferenceSet(ctx, account)
		s.Require().NoError(err)
		s.Equal([]string{"Jane Roe", "Bob"}, models.Names(set))
	})
}

func (s *StoreSuite) TestSetQuotaInfo() {
	ctx := context.Background()
	account := id.AccountID("quota")

	s.Require().NoError(s.store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 4}))
	info, err := s.store.GetQuotaInfo(ctx, account)
	s.Require().NoError(err)
	s.Equal(models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 4}, info)

	s.Error(s.store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: "gold"}))
}

func (s *StoreSuite) TestConcurrentAppendsRespectCapacity() {
	ctx := context.Background()
	account := id.AccountID("concurrent")
	s.Require().NoError(s.store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 1}))

	const goroutines = 10
	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef(fmt.Sprintf("name-%d", i)))
			if err == nil && res.Created {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(2), created.Load())
	set, err := s.store.GetReferenceSet(ctx, account)
	s.Require().NoError(err)
	s.Equal(2, set.Len())
}
