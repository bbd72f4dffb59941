//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"profileguard/internal/profile/models"
	"profileguard/internal/profile/store/postgres"
	id "profileguard/pkg/domain"
	txcontext "profileguard/pkg/platform/tx"
	"profileguard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.postgres.DB))
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "identity_references", "profile_accounts")
	s.Require().NoError(err)
}

func newRef(name string) models.IdentityReference {
	return models.ArtifactIdentity{Name: name, Email: "x@example.com"}.
		Reference(id.Source("integration"), time.Now())
}

func (s *PostgresStoreSuite) TestUnknownAccount() {
	ctx := context.Background()
	set, err := s.store.GetReferenceSet(ctx, id.AccountID("missing"))
	s.Require().NoError(err)
	s.Equal(models.SetKindEmpty, set.Kind())

	info, err := s.store.GetQuotaInfo(ctx, id.AccountID("missing"))
	s.Require().NoError(err)
	s.Equal(models.DefaultQuotaInfo(), info)
}

func (s *PostgresStoreSuite) TestCreateReferenceIfAbsent() {
	ctx := context.Background()
	account := id.AccountID("acct-1")

	res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("Jane Roe"))
	s.Require().NoError(err)
	s.True(res.Created)

	s.Run("stamps are persisted", func() {
		set, err := s.store.GetReferenceSet(ctx, account)
		s.Require().NoError(err)
		s.Require().Equal(1, set.Len())
		stored := set.References()[0]
		s.Equal(id.Source("integration"), stored.Source)
		s.False(stored.StoredAt.IsZero())
		s.False(stored.ID.IsNil())
	})

	s.Run("same name is existing", func() {
		res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("JANE ROE"))
		s.Require().NoError(err)
		s.True(res.Existing)
	})

	s.Run("anonymous account cannot append", func() {
		res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("Bob"))
		s.Require().NoError(err)
		s.True(res.LimitReached)
	})

	s.Run("purchased slot admits", func() {
		s.Require().NoError(s.store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 1}))
		res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("Bob"))
		s.Require().NoError(err)
		s.True(res.Created)

		set, err := s.store.GetReferenceSet(ctx, account)
		s.Require().NoError(err)
		s.Equal(models.SetKindCollection, set.Kind())
		s.Equal([]string{"Jane Roe", "Bob"}, models.Names(set))
	})
}

func (s *PostgresStoreSuite) TestLegacySingleShape() {
	ctx := context.Background()
	account := id.AccountID("legacy")

	_, err := s.postgres.DB.ExecContext(ctx,
		`INSERT INTO profile_accounts (account_id, plan_tier, purchased_slots, reference_shape) VALUES ($1, 'basic', 1, 'single')`,
		account.String())
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(ctx,
		`INSERT INTO identity_references (id, account_id, position, name, normalized_name, stored_at) VALUES (gen_random_uuid(), $1, 0, 'Jane', 'jane', now())`,
		account.String())
	s.Require().NoError(err)

	set, err := s.store.GetReferenceSet(ctx, account)
	s.Require().NoError(err)
	s.Equal(models.SetKindSingle, set.Kind())

	res, err := s.store.CreateReferenceIfAbsent(ctx, account, newRef("Bob"))
	s.Require().NoError(err)
	s.True(res.Created)

	set, err = s.store.GetReferenceSet(ctx, account)
	s.Require().NoError(err)
	s.Equal(models.SetKindCollection, set.Kind())
}

func (s *PostgresStoreSuite) TestUsesTransactionFromContext() {
	ctx := context.Background()
	account := id.AccountID("tx-account")

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(ctx, tx)

	res, err := s.store.CreateReferenceIfAbsent(txCtx, account, newRef("Jane"))
	s.Require().NoError(err)
	s.True(res.Created)
	s.Require().NoError(tx.Rollback())

	set, err := s.store.GetReferenceSet(ctx, account)
	s.Require().NoError(err)
	s.Equal(models.SetKindEmpty, set.Kind())
}

// TestConcurrentAppendsRespectCapacity verifies that the row lock keeps
// concurrent appends within 1 + purchased slots.
func (s *PostgresStoreSuite) TestConcurrentAppendsRespectCapacity() {
	ctx := context.Background()
	account := id.AccountID("concurrent")
	s.Require().NoError(s.store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 2}))

	const goroutines = 20
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

	s.Equal(int32(3), created.Load())
	set, err := s.store.GetReferenceSet(ctx, account)
	s.Require().NoError(err)
	s.Equal(3, set.Len())
}
