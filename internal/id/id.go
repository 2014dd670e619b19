// Package id formats and parses the ledger's human-readable document
// numbers: journal entries as "YYYY-MM-NNN" and invoices as
// "<PREFIX>-NNNNNN", sequential per prefix.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatEntryNumber returns a journal entry number like "2025-01-001".
func FormatEntryNumber(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseEntryNumber parses "2025-01-001" into year, month, seq.
func ParseEntryNumber(number string) (year, month, seq int, err error) {
	parts := strings.SplitN(number, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry number format: %q", number)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry number %q: %w", number, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in entry number %q: %w", number, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry number %q: %w", number, err)
	}

	return year, month, seq, nil
}

// FormatDocNumber returns an invoice number like "INV-000042".
func FormatDocNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// ParseDocNumber splits "INV-000042" into prefix and sequence.
func ParseDocNumber(number string) (prefix string, seq int, err error) {
	i := strings.LastIndex(number, "-")
	if i <= 0 || i == len(number)-1 {
		return "", 0, fmt.Errorf("invalid document number format: %q", number)
	}
	prefix = number[:i]
	seq, err = strconv.Atoi(number[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in document number %q: %w", number, err)
	}
	return prefix, seq, nil
}
