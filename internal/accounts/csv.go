package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

const (
	numFields  = 7
	colCode    = 0
	colName    = 1
	colType    = 2
	colSubtype = 3
	colParent  = 4
	colBalance = 5
	colDesc    = 6
)

// WriteChart writes the chart of accounts as CSV, cached balances
// included, for handing to an accountant.
func WriteChart(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"code", "name", "type", "subtype", "parent_code", "balance", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	byID := make(map[uint]string, len(accts))
	for _, a := range accts {
		byID[a.ID] = a.Code
	}

	for i, a := range accts {
		row := make([]string, numFields)
		row[colCode] = a.Code
		row[colName] = a.Name
		row[colType] = string(a.Type)
		row[colSubtype] = a.Subtype
		if a.ParentID != 0 {
			row[colParent] = byID[a.ParentID]
		}
		row[colBalance] = a.Balance.StringFixed(2)
		row[colDesc] = a.Description
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadChart reads a chart CSV back into accounts. Parent links are
// resolved by code after all rows are read.
func ReadChart(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var accts []model.Account
	parents := make(map[string]string)
	for i, rec := range records[1:] {
		t := model.AccountType(rec[colType])
		if !t.Valid() {
			return nil, fmt.Errorf("row %d: unknown account type %q", i+2, rec[colType])
		}
		a := model.Account{
			Code:        rec[colCode],
			Name:        rec[colName],
			Type:        t,
			Subtype:     rec[colSubtype],
			Description: rec[colDesc],
		}
		if rec[colBalance] != "" {
			bal, err := decimal.NewFromString(rec[colBalance])
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing balance %q: %w", i+2, rec[colBalance], err)
			}
			a.Balance = bal
		}
		if rec[colParent] != "" {
			parents[a.Code] = rec[colParent]
		}
		accts = append(accts, a)
	}

	// Assign provisional IDs so parent links resolve without a store.
	idByCode := make(map[string]uint, len(accts))
	for i := range accts {
		accts[i].ID = uint(i + 1)
		idByCode[accts[i].Code] = accts[i].ID
	}
	for i := range accts {
		if p, ok := parents[accts[i].Code]; ok {
			pid, ok := idByCode[p]
			if !ok {
				return nil, fmt.Errorf("account %s references unknown parent code %q", accts[i].Code, p)
			}
			accts[i].ParentID = pid
		}
	}
	return accts, nil
}

