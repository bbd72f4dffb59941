package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
)

func TestInMemoryStore(t *testing.T) {
	store := New()
	ctx := context.Background()
	account := id.AccountID("acct-1")

	t.Run("unknown account reads as empty anonymous", func(t *testing.T) {
		set, err := store.GetReferenceSet(ctx, id.AccountID("missing"))
		require.NoError(t, err)
		assert.Equal(t, models.SetKindEmpty, set.Kind())

		info, err := store.GetQuotaInfo(ctx, id.AccountID("missing"))
		require.NoError(t, err)
		assert.Equal(t, models.DefaultQuotaInfo(), info)
	})

	t.Run("first reference creates the account", func(t *testing.T) {
		res, err := store.CreateReferenceIfAbsent(ctx, account, models.IdentityReference{Name: "Jane Roe"})
		require.NoError(t, err)
		assert.True(t, res.Created)

		set, err := store.GetReferenceSet(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jane Roe"}, models.Names(set))
	})

	t.Run("duplicate name is existing", func(t *testing.T) {
		res, err := store.CreateReferenceIfAbsent(ctx, account, models.IdentityReference{Name: "JANE ROE"})
		require.NoError(t, err)
		assert.True(t, res.Existing)
	})

	t.Run("second name needs a slot", func(t *testing.T) {
		res, err := store.CreateReferenceIfAbsent(ctx, account, models.IdentityReference{Name: "Bob"})
		require.NoError(t, err)
		assert.True(t, res.LimitReached)

		require.NoError(t, store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 1}))

		res, err = store.CreateReferenceIfAbsent(ctx, account, models.IdentityReference{Name: "Bob"})
		require.NoError(t, err)
		assert.True(t, res.Created)

		set, err := store.GetReferenceSet(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jane Roe", "Bob"}, models.Names(set))
	})

	t.Run("SetQuotaInfo rejects invalid info", func(t *testing.T) {
		err := store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: -1})
		require.Error(t, err)
	})

	t.Run("quota downgrade does not shrink the set", func(t *testing.T) {
		require.NoError(t, store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanFree}))
		set, err := store.GetReferenceSet(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())
	})
}

func TestInMemoryStore_SeedLegacySingle(t *testing.T) {
	store := New()
	ctx := context.Background()
	account := id.AccountID("legacy")

	require.NoError(t, store.Seed(account, models.Single(models.IdentityReference{Name: "Jane"}),
		models.AccountQuotaInfo{PlanTier: models.PlanBasic, PurchasedSlots: 1}))

	res, err := store.CreateReferenceIfAbsent(ctx, account, models.IdentityReference{Name: "Bob"})
	require.NoError(t, err)
	assert.True(t, res.Created)

	set, err := store.GetReferenceSet(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, models.SetKindCollection, set.Kind())
}

func TestInMemoryStore_ConcurrentAppendsRespectCapacity(t *testing.T) {
	store := New()
	ctx := context.Background()
	account := id.AccountID("concurrent")
	require.NoError(t, store.SetQuotaInfo(ctx, account, models.AccountQuotaInfo{PlanTier: models.PlanPremium, PurchasedSlots: 2}))

	const goroutines = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.CreateReferenceIfAbsent(ctx, account, models.IdentityReference{Name: fmt.Sprintf("name-%d", i)})
			assert.NoError(t, err)
			if res.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	set, err := store.GetReferenceSet(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
}
