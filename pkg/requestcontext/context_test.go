package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "profileguard/pkg/domain"
)

func TestAccessors(t *testing.T) {
	t.Run("empty context returns zero values", func(t *testing.T) {
		ctx := context.Background()
		assert.True(t, AccountID(ctx).IsNil())
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, SessionID(ctx))
	})

	t.Run("values round trip", func(t *testing.T) {
		ctx := WithAccountID(context.Background(), id.AccountID("acct-1"))
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithSessionID(ctx, "sess-1")
		assert.Equal(t, id.AccountID("acct-1"), AccountID(ctx))
		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, "sess-1", SessionID(ctx))
	})

	t.Run("injected time wins over wall clock", func(t *testing.T) {
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
	})
}
