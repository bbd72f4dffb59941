// Package domain holds typed identifiers shared across modules.
//
// Identifiers are parsed at trust boundaries (HTTP, JWT claims, store rows) so
// that services never handle an unchecked raw string.
package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "profileguard/pkg/domain-errors"
)

const maxAccountIDLength = 128

// AccountID identifies an authenticated account. Account IDs are issued by the
// external identity provider and are opaque to this service.
type AccountID string

// ParseAccountID validates an account identifier from external input.
// Invariant: non-empty, valid UTF-8, at most 128 characters, no whitespace or control characters.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id is required")
	}
	if len(s) > maxAccountIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account id contains invalid characters")
		}
	}
	return AccountID(s), nil
}

// String returns the raw identifier.
func (a AccountID) String() string {
	return string(a)
}

// IsNil reports whether the ID is unset.
func (a AccountID) IsNil() bool {
	return strings.TrimSpace(string(a)) == ""
}

// ReferenceID identifies one stored identity reference.
type ReferenceID uuid.UUID

// NewReferenceID generates a random reference ID.
func NewReferenceID() ReferenceID {
	return ReferenceID(uuid.New())
}

// ParseReferenceID validates a reference ID. The nil UUID is rejected.
func ParseReferenceID(s string) (ReferenceID, error) {
	if s == "" {
		return ReferenceID{}, dErrors.New(dErrors.CodeInvalidInput, "reference id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ReferenceID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid reference id")
	}
	if parsed == uuid.Nil {
		return ReferenceID{}, dErrors.New(dErrors.CodeInvalidInput, "reference id must not be nil")
	}
	return ReferenceID(parsed), nil
}

func (r ReferenceID) String() string {
	return uuid.UUID(r).String()
}

// IsNil reports whether the ID is the zero UUID.
func (r ReferenceID) IsNil() bool {
	return uuid.UUID(r) == uuid.Nil
}

func (r ReferenceID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ReferenceID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid reference id")
	}
	*r = ReferenceID(parsed)
	return nil
}
