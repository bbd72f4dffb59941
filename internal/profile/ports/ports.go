// Package ports defines the interfaces the profile guard consumes and exposes.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Repository,AccountAdmin,Prompter,AuditPublisher

import (
	"context"
	"log/slog"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/audit"
	"profileguard/pkg/requestcontext"
)

// Repository is the durable identity reference store.
//
// Reads must return fresh data. An account without a stored record reads as
// models.Empty() with models.DefaultQuotaInfo(). CreateReferenceIfAbsent must
// be atomic: the name dedupe, the capacity check against 1 + purchased slots
// and the append happen as one step.
type Repository interface {
	GetReferenceSet(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, error)
	GetQuotaInfo(ctx context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error)
	CreateReferenceIfAbsent(ctx context.Context, accountID id.AccountID, ref models.IdentityReference) (models.CreateResult, error)
}

// AccountAdmin updates plan and slot bookkeeping after a purchase or downgrade.
type AccountAdmin interface {
	SetQuotaInfo(ctx context.Context, accountID id.AccountID, info models.AccountQuotaInfo) error
}

// Prompter receives the guard's user-facing notifications. Calls are
// fire-and-forget: implementations must not block the decision.
type Prompter interface {
	// OnBlocked is fired on a hard block with the rejected identity.
	OnBlocked(ctx context.Context, accountID id.AccountID, blocked models.ArtifactIdentity)
	// OnNeedsUpgrade is fired when the account must upgrade its plan.
	OnNeedsUpgrade(ctx context.Context, accountID id.AccountID)
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// NopPrompter discards notifications.
type NopPrompter struct{}

func (NopPrompter) OnBlocked(context.Context, id.AccountID, models.ArtifactIdentity) {}
func (NopPrompter) OnNeedsUpgrade(context.Context, id.AccountID)                     {}

// LogAudit logs to the structured logger and, when configured, forwards the
// event to the audit publisher.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, accountID id.AccountID, attrs ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", string(event), "account_id", accountID.String(), "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	ev := audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		AccountID: accountID,
		Action:    string(event),
		RequestID: requestID,
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		key, _ := attrs[i].(string)
		val, _ := attrs[i+1].(string)
		switch key {
		case "source":
			ev.Source = val
		case "decision":
			ev.Decision = val
		case "reason":
			ev.Reason = val
		case "actor_id":
			ev.ActorID = val
		}
	}
	if err := publisher.Emit(ctx, ev); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
