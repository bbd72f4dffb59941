package audit

import (
	"time"

	id "profileguard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategorySecurity covers events relevant to abuse monitoring, such as
	// repeated identity mismatches on one account.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	AccountID id.AccountID  `json:"account_id"`
	Action    string        `json:"action"`
	Source    string        `json:"source,omitempty"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	// ActorID is set when an operator acts on the account's behalf.
	ActorID string `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	EventReferenceStored     AuditEvent = "profile_reference_stored"
	EventIdentityMismatch    AuditEvent = "profile_identity_mismatch"
	EventProfileLimitReached AuditEvent = "profile_limit_reached"
	EventUpgradeRequired     AuditEvent = "profile_upgrade_required"
	EventGuardUnavailable    AuditEvent = "profile_guard_unavailable"
	EventQuotaUpdated        AuditEvent = "profile_quota_updated"
	EventReferenceCacheReset AuditEvent = "profile_reference_cache_reset"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityMismatch:    CategorySecurity,
	EventProfileLimitReached: CategorySecurity,
	EventQuotaUpdated:        CategorySecurity,

	EventReferenceStored:     CategoryOperations,
	EventUpgradeRequired:     CategoryOperations,
	EventGuardUnavailable:    CategoryOperations,
	EventReferenceCacheReset: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

func (e AuditEvent) String() string {
	return string(e)
}
