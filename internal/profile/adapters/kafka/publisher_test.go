package kafka

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/audit"
)

func TestNew_RequiresBrokers(t *testing.T) {
	p, err := New(nil)
	require.Error(t, err)
	assert.Nil(t, p)
}

func TestNew_Topics(t *testing.T) {
	// kgo.NewClient does not dial until the first request.
	p, err := New([]string{"localhost:9092"}, WithTopics("prompts", ""))
	require.NoError(t, err)
	t.Cleanup(p.client.Close)

	assert.Equal(t, "prompts", p.promptTopic)
	assert.Equal(t, DefaultAuditTopic, p.auditTopic)
}

func TestPublish_DoesNotBlockWhenBufferIsFull(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	p, err := New([]string{addr}, WithBuffer(1, time.Second))
	require.NoError(t, err)
	t.Cleanup(p.client.Close)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 20 {
			p.OnNeedsUpgrade(ctx, id.AccountID("acct-1"))
			p.OnBlocked(ctx, id.AccountID("acct-1"), models.ArtifactIdentity{Name: "Ana"})
			_ = p.Emit(ctx, audit.Event{AccountID: id.AccountID("acct-1"), Action: "profile_blocked"})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing blocked while brokers were unreachable")
	}
}
