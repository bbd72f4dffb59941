// Package models defines the identity-ownership guard's domain types.
package models

import (
	"strings"
	"time"

	id "profileguard/pkg/domain"
	pstrings "profileguard/pkg/platform/strings"
)

// SampleName is the reserved demo identity pre-filled in resume templates.
// Artifacts carrying it are always treated as owned and never persisted.
const SampleName = "john doe"

const sampleNameCompact = "johndoe"

// IdentityReference is a stored snapshot of the identifying fields captured
// from an artifact the account has claimed as its own.
type IdentityReference struct {
	ID       id.ReferenceID `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Source   id.Source      `json:"source,omitempty"`
	StoredAt time.Time      `json:"stored_at"`
}

// IsBlank reports whether the reference carries no identifying data at all,
// which happens when a capture went wrong upstream.
func (r IdentityReference) IsBlank() bool {
	return strings.TrimSpace(r.Name) == "" &&
		strings.TrimSpace(r.Email) == "" &&
		strings.TrimSpace(r.Phone) == ""
}

// NormalizedName is the comparison form of the reference name.
func (r IdentityReference) NormalizedName() string {
	return pstrings.Normalize(r.Name)
}

// ArtifactIdentity holds the fields extracted from the artifact under evaluation.
type ArtifactIdentity struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// NormalizedName is the comparison form of the artifact name.
func (a ArtifactIdentity) NormalizedName() string {
	return pstrings.Normalize(a.Name)
}

// NormalizedEmail is collected for completeness; ownership is decided on name only.
func (a ArtifactIdentity) NormalizedEmail() string {
	return pstrings.Normalize(a.Email)
}

// NormalizedPhone is collected for completeness; ownership is decided on name only.
func (a ArtifactIdentity) NormalizedPhone() string {
	return pstrings.Normalize(a.Phone)
}

// HasName reports whether the artifact carries a usable name.
func (a ArtifactIdentity) HasName() bool {
	return a.NormalizedName() != ""
}

// IsSample reports whether the artifact is the reserved sample profile.
func (a ArtifactIdentity) IsSample() bool {
	n := a.NormalizedName()
	return n == SampleName || n == sampleNameCompact
}

// Reference builds the reference to persist for this artifact.
func (a ArtifactIdentity) Reference(source id.Source, storedAt time.Time) IdentityReference {
	return IdentityReference{
		ID:       id.NewReferenceID(),
		Name:     strings.TrimSpace(a.Name),
		Email:    strings.TrimSpace(a.Email),
		Phone:    strings.TrimSpace(a.Phone),
		Source:   source,
		StoredAt: storedAt.UTC(),
	}
}
