// Package store holds the admission rule shared by every repository backend.
// Backends in the subpackages run Admit inside their own atomic section.
package store

import (
	"profileguard/internal/profile/models"
	"profileguard/internal/profile/quota"
)

// Admit decides whether ref may be appended to set under info.
//
// A reference whose normalized name is already stored is reported as Existing.
// Otherwise the set must have spare capacity against 1 + purchased slots. On
// Created the returned set holds ref at the end; a legacy single set comes
// back as a collection. For any other result the input set is returned.
func Admit(set models.ReferenceSet, info models.AccountQuotaInfo, ref models.IdentityReference) (models.ReferenceSet, models.CreateResult) {
	if set == nil {
		set = models.Empty()
	}
	if models.ContainsName(set, ref.NormalizedName()) {
		return set, models.CreateResult{Existing: true}
	}
	if quota.ForSet(info, set).Exhausted() {
		return set, models.CreateResult{LimitReached: true}
	}
	return models.Append(set, ref), models.CreateResult{Created: true}
}
