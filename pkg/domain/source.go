package domain

import (
	"strings"
	"unicode/utf8"
)

// Source tags the caller that triggered a privileged action (for example
// "resume_builder_download"). It is recorded alongside stored references.
type Source string

// SourceUnknown is used when the caller does not tag its action.
const SourceUnknown Source = "unknown_source"

const maxSourceLength = 64

// ParseSource normalises a caller-supplied tag. Blank input maps to
// SourceUnknown, invalid UTF-8 is dropped and overly long tags are
// truncated on a rune boundary.
func ParseSource(s string) Source {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	if s == "" {
		return SourceUnknown
	}
	if len(s) > maxSourceLength {
		s = s[:maxSourceLength]
		for !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	return Source(s)
}

func (s Source) String() string {
	return string(s)
}
