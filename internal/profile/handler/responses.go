package handler

import (
	"time"

	"profileguard/internal/profile/models"
	"profileguard/internal/profile/quota"
)

// DecisionResponse is returned by POST /profile/access/check.
type DecisionResponse struct {
	Allowed        bool                     `json:"allowed"`
	NeedsUpgrade   bool                     `json:"needs_upgrade"`
	InProgress     bool                     `json:"in_progress"`
	Outcome        string                   `json:"outcome"`
	Reason         string                   `json:"reason,omitempty"`
	BlockedProfile *models.ArtifactIdentity `json:"blocked_profile,omitempty"`
}

func FromDecision(d models.Decision) *DecisionResponse {
	return &DecisionResponse{
		Allowed:        d.Allowed,
		NeedsUpgrade:   d.NeedsUpgrade,
		InProgress:     d.InProgress,
		Outcome:        string(d.Outcome),
		Reason:         d.Reason,
		BlockedProfile: d.Blocked,
	}
}

// ReferenceResponse is one stored identity reference.
type ReferenceResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Source   string    `json:"source,omitempty"`
	StoredAt time.Time `json:"stored_at"`
}

// ReferencesResponse is returned by GET /profile/references.
type ReferencesResponse struct {
	Shape      string              `json:"shape"`
	References []ReferenceResponse `json:"references"`
	PlanTier   string              `json:"plan_tier"`
	Capacity   quota.Capacity      `json:"capacity"`
	// LastBlocked is the identity rejected by the most recent hard block.
	LastBlocked *models.ArtifactIdentity `json:"last_blocked,omitempty"`
}

func FromReferenceSet(set models.ReferenceSet, info models.AccountQuotaInfo) *ReferencesResponse {
	refs := set.References()
	out := make([]ReferenceResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ReferenceResponse{
			ID:       ref.ID.String(),
			Name:     ref.Name,
			Email:    ref.Email,
			Phone:    ref.Phone,
			Source:   ref.Source.String(),
			StoredAt: ref.StoredAt,
		})
	}
	return &ReferencesResponse{
		Shape:      string(set.Kind()),
		References: out,
		PlanTier:   info.PlanTier.String(),
		Capacity:   quota.ForSet(info, set),
	}
}

// QuotaResponse echoes the stored quota after an admin update.
type QuotaResponse struct {
	AccountID      string `json:"account_id"`
	PlanTier       string `json:"plan_tier"`
	PurchasedSlots int    `json:"purchased_slots"`
	TotalSlots     int    `json:"total_slots"`
}
