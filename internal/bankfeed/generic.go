package bankfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

// GenericParser parses a three-column CSV: date,description,amount with
// a header row. Dates are ISO (2006-01-02). This is the raw shape the
// bank-feed collaborator supplies.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads the CSV and returns BankTransactions.
func (p *GenericParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !strings.EqualFold(strings.TrimSpace(records[0][0]), "date") {
		return nil, fmt.Errorf("missing header row, got %q", records[0][0])
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[0], err)
		}
		amount, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[2], err)
		}
		txns = append(txns, model.BankTransaction{
			Date:        date,
			Description: rec[1],
			Amount:      amount,
			Reference:   makeRef("generic", date, rec[1]),
			Source:      "generic",
		})
	}
	return txns, nil
}
