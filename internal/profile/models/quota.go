package models

import (
	"strings"

	dErrors "profileguard/pkg/domain-errors"
)

// PlanTier is the commercial plan of an account.
type PlanTier string

const (
	PlanAnonymous PlanTier = "anonymous"
	PlanFree      PlanTier = "free"
	PlanBasic     PlanTier = "basic"
	PlanOneDay    PlanTier = "oneDay"
	PlanPremium   PlanTier = "premium"
)

// IsValid checks if the tier is one of the supported values.
func (p PlanTier) IsValid() bool {
	switch p {
	case PlanAnonymous, PlanFree, PlanBasic, PlanOneDay, PlanPremium:
		return true
	}
	return false
}

// IsPaid reports whether mismatched identities on this plan may consume
// purchased slots. Anonymous and free plans must upgrade instead.
func (p PlanTier) IsPaid() bool {
	switch p {
	case PlanPremium, PlanBasic, PlanOneDay:
		return true
	}
	return false
}

func (p PlanTier) String() string {
	return string(p)
}

// ParsePlanTier validates a tier from external input (admin API).
func ParsePlanTier(s string) (PlanTier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "plan tier cannot be empty")
	}
	for _, p := range []PlanTier{PlanAnonymous, PlanFree, PlanBasic, PlanOneDay, PlanPremium} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid plan tier")
}

// PlanTierFromStore decodes a stored tier. Missing or unknown values read as
// anonymous so a malformed record can never unlock paid behaviour.
func PlanTierFromStore(s string) PlanTier {
	if p := PlanTier(s); p.IsValid() {
		return p
	}
	return PlanAnonymous
}

// AccountQuotaInfo is the plan and purchased slot count of an account.
type AccountQuotaInfo struct {
	PlanTier       PlanTier `json:"plan_tier"`
	PurchasedSlots int      `json:"purchased_slots"`
}

// DefaultQuotaInfo is what an account without a stored record gets.
func DefaultQuotaInfo() AccountQuotaInfo {
	return AccountQuotaInfo{PlanTier: PlanAnonymous}
}

// Validate checks the invariants of quota info coming from the admin API.
func (q AccountQuotaInfo) Validate() error {
	if !q.PlanTier.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid plan tier")
	}
	if q.PurchasedSlots < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "purchased slots must not be negative")
	}
	return nil
}
