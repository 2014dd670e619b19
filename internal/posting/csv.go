package posting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

// JournalHeader is the CSV header for journal exports.
const JournalHeader = "entry_number,date,account_code,description,debit,credit,reference_type,reference_id"

const journalDateFormat = "2006-01-02"

// WriteJournal writes every entry's lines as CSV, one row per line.
// Accounts are keyed by ID to resolve codes.
func WriteJournal(w io.Writer, entries []model.JournalEntry, accounts map[uint]model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(JournalHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		for _, l := range e.Lines {
			code := ""
			if a, ok := accounts[l.AccountID]; ok {
				code = a.Code
			}
			row := []string{
				e.Number,
				e.Date.Format(journalDateFormat),
				code,
				e.Description,
				l.Debit.StringFixed(2),
				l.Credit.StringFixed(2),
				string(e.RefType),
				fmt.Sprintf("%d", e.RefID),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing %s: %w", e.Number, err)
			}
		}
	}
	return cw.Error()
}
