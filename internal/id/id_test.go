package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryNumber(t *testing.T) {
	assert.Equal(t, "2025-01-001", FormatEntryNumber(2025, 1, 1))
	assert.Equal(t, "2024-12-123", FormatEntryNumber(2024, 12, 123))
}

func TestParseEntryNumber(t *testing.T) {
	year, month, seq, err := ParseEntryNumber("2025-03-017")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 3, month)
	assert.Equal(t, 17, seq)
}

func TestParseEntryNumber_Invalid(t *testing.T) {
	for _, bad := range []string{"", "2025", "2025-01", "x-y-z"} {
		_, _, _, err := ParseEntryNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatDocNumber(t *testing.T) {
	assert.Equal(t, "INV-000042", FormatDocNumber("INV", 42))
	assert.Equal(t, "CN-000001", FormatDocNumber("CN", 1))
}

func TestParseDocNumber(t *testing.T) {
	prefix, seq, err := ParseDocNumber("INV-000042")
	require.NoError(t, err)
	assert.Equal(t, "INV", prefix)
	assert.Equal(t, 42, seq)

	// Prefixes may themselves contain dashes.
	prefix, seq, err = ParseDocNumber("ACME-INV-000007")
	require.NoError(t, err)
	assert.Equal(t, "ACME-INV", prefix)
	assert.Equal(t, 7, seq)
}

func TestParseDocNumber_Invalid(t *testing.T) {
	for _, bad := range []string{"", "INV", "INV-", "-000042", "INV-abc"} {
		_, _, err := ParseDocNumber(bad)
		assert.Error(t, err, bad)
	}
}
