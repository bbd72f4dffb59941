// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// Normalize lowercases and trims s. It is the comparison form used for
// display names throughout the profile guard.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DedupeFold removes blanks and case-insensitive duplicates, trimming each
// element and keeping the first spelling seen. Order is preserved.
//
// Example:
//
//	DedupeFold([]string{" Jane Doe", "JANE DOE", "", "Sam"})
//	// Returns: []string{"Jane Doe", "Sam"}
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		key := Normalize(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, strings.TrimSpace(v))
		}
	}
	return result
}
