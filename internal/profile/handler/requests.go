package handler

import (
	"strings"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
	dErrors "profileguard/pkg/domain-errors"
)

const maxFieldLength = 256

// IdentityRequest is the body of POST /profile/access/check and
// POST /profile/references.
type IdentityRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// Validate only bounds field sizes. A blank name is a valid request: the
// guard treats it as unverifiable and allows it.
func (r *IdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for field, v := range map[string]string{"name": r.Name, "email": r.Email, "phone": r.Phone} {
		if len(v) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, field+" is too long")
		}
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	return nil
}

func (r *IdentityRequest) Identity() models.ArtifactIdentity {
	return models.ArtifactIdentity{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

func (r *IdentityRequest) ParsedSource() id.Source {
	return id.ParseSource(r.Source)
}

// SetQuotaRequest is the body of PUT /admin/accounts/{account_id}/quota.
type SetQuotaRequest struct {
	PlanTier       string `json:"plan_tier"`
	PurchasedSlots int    `json:"purchased_slots"`

	parsed models.AccountQuotaInfo
}

func (r *SetQuotaRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	tier, err := models.ParsePlanTier(strings.TrimSpace(r.PlanTier))
	if err != nil {
		return err
	}
	info := models.AccountQuotaInfo{PlanTier: tier, PurchasedSlots: r.PurchasedSlots}
	if err := info.Validate(); err != nil {
		return err
	}
	r.parsed = info
	return nil
}

func (r *SetQuotaRequest) QuotaInfo() models.AccountQuotaInfo {
	return r.parsed
}
