// Package matcher decides whether an artifact belongs to an account's stored identities.
//
// The check is deliberately light: only the display name is compared, after
// lowercasing and trimming. Email and phone are normalised but not consulted,
// which keeps false-positive blocks rare at the cost of weaker verification.
// The matcher never blocks on missing data, only on a confident mismatch.
package matcher

import (
	"fmt"
	"strings"

	"profileguard/internal/profile/models"
	pstrings "profileguard/pkg/platform/strings"
)

// Reasons reported alongside a match result.
const (
	ReasonNoReference     = "no reference yet"
	ReasonSampleProfile   = "sample profile"
	ReasonNoIdentity      = "no identifying data"
	ReasonMatch           = "match found"
	ReasonCollectionMatch = "match found in profile collection"
	ReasonBlankReference  = "stored reference is empty"
)

// Result is the outcome of Match.
type Result struct {
	IsOwner bool
	Reason  string
}

// Match compares artifact against set.
func Match(artifact models.ArtifactIdentity, set models.ReferenceSet) Result {
	if set == nil {
		return Result{IsOwner: true, Reason: ReasonNoReference}
	}
	if artifact.IsSample() {
		return Result{IsOwner: true, Reason: ReasonSampleProfile}
	}
	name := artifact.NormalizedName()
	if name == "" {
		return Result{IsOwner: true, Reason: ReasonNoIdentity}
	}

	switch s := set.(type) {
	case models.EmptySet:
		return Result{IsOwner: true, Reason: ReasonNoReference}

	case models.SingleSet:
		if s.Reference.IsBlank() {
			return Result{IsOwner: true, Reason: ReasonBlankReference}
		}
		if matches(name, s.Reference) {
			return Result{IsOwner: true, Reason: ReasonMatch}
		}
		expected := s.Reference.Name
		if strings.TrimSpace(expected) == "" {
			expected = "primary profile"
		}
		return Result{IsOwner: false, Reason: "identity mismatch, expected: " + expected}

	case models.CollectionSet:
		for _, ref := range s.Items {
			if ref.IsBlank() || matches(name, ref) {
				return Result{IsOwner: true, Reason: ReasonCollectionMatch}
			}
		}
		expected := strings.Join(pstrings.DedupeFold(models.Names(s)), ", ")
		if expected == "" {
			expected = "registered profiles"
		}
		return Result{IsOwner: false, Reason: fmt.Sprintf("identity mismatch, expected one of: %s", expected)}

	default:
		return Result{IsOwner: true, Reason: ReasonNoReference}
	}
}

func matches(normalizedName string, ref models.IdentityReference) bool {
	refName := ref.NormalizedName()
	return refName != "" && refName == normalizedName
}
