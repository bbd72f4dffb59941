package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "profileguard/pkg/domain"
	audit "profileguard/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Emit(ctx, audit.Event{AccountID: "a", Action: audit.EventReferenceStored.String()}))
	require.NoError(t, store.Append(ctx, audit.Event{AccountID: "a", Action: audit.EventIdentityMismatch.String()}))
	require.NoError(t, store.Append(ctx, audit.Event{AccountID: "b", Action: audit.EventReferenceStored.String()}))

	events, err := store.ListByAccount(ctx, id.AccountID("a"))
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, audit.EventIdentityMismatch.String(), events[1].Action)

	recent, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	store.Clear()
	events, err = store.ListByAccount(ctx, id.AccountID("a"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, audit.CategorySecurity, audit.EventProfileLimitReached.Category())
	assert.Equal(t, audit.CategoryOperations, audit.EventReferenceStored.Category())
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("unknown").Category())
}
