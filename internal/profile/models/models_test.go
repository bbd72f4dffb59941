package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "profileguard/pkg/domain"
	dErrors "profileguard/pkg/domain-errors"
)

func ref(name string) IdentityReference {
	return IdentityReference{ID: id.NewReferenceID(), Name: name}
}

func TestReferenceSet_Shapes(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		set := Empty()
		assert.Equal(t, SetKindEmpty, set.Kind())
		assert.Equal(t, 0, set.Len())
		assert.Empty(t, set.References())
	})

	t.Run("collection without items collapses to empty", func(t *testing.T) {
		assert.Equal(t, SetKindEmpty, Collection().Kind())
	})

	t.Run("append upgrades legacy single to collection", func(t *testing.T) {
		single := Single(ref("Jane Doe"))
		grown := Append(single, ref("Sam Roe"))
		assert.Equal(t, SetKindCollection, grown.Kind())
		assert.Equal(t, 2, grown.Len())
		assert.Equal(t, []string{"Jane Doe", "Sam Roe"}, Names(grown))
		assert.Equal(t, 1, single.Len(), "receiver is not modified")
	})

	t.Run("append to empty creates one-entry collection", func(t *testing.T) {
		grown := Append(Empty(), ref("Jane Doe"))
		assert.Equal(t, SetKindCollection, grown.Kind())
		assert.Equal(t, 1, grown.Len())
	})

	t.Run("references are copies", func(t *testing.T) {
		set := Collection(ref("Jane Doe"))
		refs := set.References()
		refs[0].Name = "mutated"
		assert.Equal(t, []string{"Jane Doe"}, Names(set))
	})
}

func TestFromShape(t *testing.T) {
	r := ref("Jane Doe")
	assert.Equal(t, SetKindEmpty, FromShape(SetKindSingle, nil).Kind())
	assert.Equal(t, SetKindSingle, FromShape(SetKindSingle, []IdentityReference{r}).Kind())
	assert.Equal(t, SetKindCollection, FromShape(SetKindCollection, []IdentityReference{r}).Kind())
	assert.Equal(t, SetKindCollection, FromShape(SetKindSingle, []IdentityReference{r, ref("x")}).Kind(),
		"inconsistent tag falls back to row count")
}

func TestContainsName(t *testing.T) {
	set := Collection(ref("Jane Doe"), ref("Sam Roe"))
	assert.True(t, ContainsName(set, "sam roe"))
	assert.False(t, ContainsName(set, "john smith"))
	assert.False(t, ContainsName(set, ""))
	assert.False(t, ContainsName(nil, "jane doe"))
}

func TestArtifactIdentity(t *testing.T) {
	t.Run("sample detection is case insensitive", func(t *testing.T) {
		assert.True(t, ArtifactIdentity{Name: "  JOHN Doe "}.IsSample())
		assert.True(t, ArtifactIdentity{Name: "JohnDoe"}.IsSample())
		assert.False(t, ArtifactIdentity{Name: "John Does"}.IsSample())
	})

	t.Run("reference trims fields and stamps source", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		r := ArtifactIdentity{Name: " Jane Doe ", Email: " jane@example.com"}.Reference(id.Source("upload"), at)
		assert.Equal(t, "Jane Doe", r.Name)
		assert.Equal(t, "jane@example.com", r.Email)
		assert.Equal(t, id.Source("upload"), r.Source)
		assert.Equal(t, at, r.StoredAt)
		assert.False(t, r.ID.IsNil())
	})

	t.Run("blank reference", func(t *testing.T) {
		assert.True(t, IdentityReference{Name: "  "}.IsBlank())
		assert.False(t, IdentityReference{Phone: "555"}.IsBlank())
	})
}

func TestPlanTier(t *testing.T) {
	for _, p := range []PlanTier{PlanPremium, PlanBasic, PlanOneDay} {
		assert.True(t, p.IsPaid(), p)
	}
	for _, p := range []PlanTier{PlanAnonymous, PlanFree} {
		assert.False(t, p.IsPaid(), p)
	}

	parsed, err := ParsePlanTier("ONEDAY")
	require.NoError(t, err)
	assert.Equal(t, PlanOneDay, parsed)

	_, err = ParsePlanTier("enterprise")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	assert.Equal(t, PlanAnonymous, PlanTierFromStore(""))
	assert.Equal(t, PlanAnonymous, PlanTierFromStore("gold"))
	assert.Equal(t, PlanPremium, PlanTierFromStore("premium"))
}

func TestAccountQuotaInfo_Validate(t *testing.T) {
	assert.NoError(t, AccountQuotaInfo{PlanTier: PlanPremium, PurchasedSlots: 2}.Validate())
	assert.Error(t, AccountQuotaInfo{PlanTier: PlanPremium, PurchasedSlots: -1}.Validate())
	assert.Error(t, AccountQuotaInfo{PlanTier: "gold"}.Validate())
}

func TestDecisionConstructors(t *testing.T) {
	failOpen := AllowUnverifiable(OutcomeNoIdentity, "no identifying data")
	failClosed := DenyUnavailable()

	assert.True(t, failOpen.Allowed)
	assert.False(t, failClosed.Allowed)
	assert.False(t, failClosed.NeedsUpgrade, "infrastructure failure never prompts an upgrade")
	assert.Equal(t, UnavailableMessage, failClosed.Reason)

	upgrade := DenyNeedsUpgrade("mismatch")
	assert.True(t, upgrade.NeedsUpgrade)
	assert.False(t, upgrade.Allowed)

	blocked := DenyQuotaExceeded(ArtifactIdentity{Name: "John Smith"}, "limit")
	require.NotNil(t, blocked.Blocked)
	assert.Equal(t, "John Smith", blocked.Blocked.Name)
	assert.False(t, blocked.NeedsUpgrade)

	pending := Pending()
	assert.True(t, pending.InProgress)
	assert.False(t, pending.Allowed)

	assert.True(t, StoreResult{Cached: true}.Succeeded())
	assert.False(t, StoreResult{InProgress: true}.Succeeded())
	assert.False(t, StoreResult{LimitReached: true}.Succeeded())
}
