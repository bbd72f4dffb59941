package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "profileguard/pkg/domain-errors"
)

// TestParseAccountID_Invariants validates the parsing invariant:
// "account IDs must be non-empty, printable and bounded"
func TestParseAccountID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts opaque provider uid", func(t *testing.T) {
		id, err := ParseAccountID("Xy7Q2kfa9TgZ1mPq3LrWc4vB8nD2")
		require.NoError(t, err)
		assert.Equal(t, AccountID("Xy7Q2kfa9TgZ1mPq3LrWc4vB8nD2"), id)
		assert.False(t, id.IsNil())
	})

	t.Run("zero value is nil", func(t *testing.T) {
		assert.True(t, AccountID("").IsNil())
	})
}

// TestParseAccountID_SecurityInvariants validates trust boundary rules.
func TestParseAccountID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Null byte injection", "acct\x00suffix", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "acct\u200Bid", true},
		{"Embedded space", "acct id", true},
		{"Whitespace only", "   ", true},
		{"Invalid UTF-8", string([]byte{0xff, 0xfe}), true},

		{"UUID shaped", "550e8400-e29b-41d4-a716-446655440000", false},
		{"Max length", strings.Repeat("a", maxAccountIDLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccountID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseReferenceID(t *testing.T) {
	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseReferenceID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseReferenceID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("round trips generated IDs", func(t *testing.T) {
		id := NewReferenceID()
		parsed, err := ParseReferenceID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
		assert.False(t, parsed.IsNil())
	})
}

func TestParseSource(t *testing.T) {
	assert.Equal(t, SourceUnknown, ParseSource("   "))
	assert.Equal(t, Source("resume_builder_download"), ParseSource(" resume_builder_download "))
	assert.Len(t, ParseSource(strings.Repeat("s", 200)).String(), maxSourceLength)

	t.Run("multibyte rune at the limit is not split", func(t *testing.T) {
		got := ParseSource(strings.Repeat("a", maxSourceLength-1) + "é").String()
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("a", maxSourceLength-1), got)
	})

	t.Run("invalid bytes are dropped", func(t *testing.T) {
		assert.Equal(t, Source("upload"), ParseSource("up\xffload"))
		assert.Equal(t, SourceUnknown, ParseSource("\xc3"))
	})
}

func TestReferenceID_TextRoundTrip(t *testing.T) {
	original := NewReferenceID()
	text, err := original.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, original.String(), string(text))

	var decoded ReferenceID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("not-a-uuid")))
}
