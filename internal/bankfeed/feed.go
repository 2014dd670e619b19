package bankfeed

import (
	"errors"
	"fmt"
	"io"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// Feed persists imported bank transactions and reconciliation matches.
type Feed struct {
	st       *store.Store
	registry *Registry
}

// NewFeed creates a Feed.
func NewFeed(st *store.Store, registry *Registry) *Feed {
	return &Feed{st: st, registry: registry}
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int // already present, by reference
}

// Import parses r with the named format's parser and stores every row
// not already present. Re-importing the same file is a no-op.
func (f *Feed) Import(format string, r io.Reader) (*ImportResult, error) {
	parser := f.registry.Get(format)
	if parser == nil {
		return nil, model.ValidationError{Field: "format", Reason: fmt.Sprintf("no parser for %q", format)}
	}

	txns, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	err = f.st.InTx(func(tx *store.Store) error {
		for i := range txns {
			_, err := tx.BankTransactionByReference(txns[i].Reference)
			if err == nil {
				res.Skipped++
				continue
			}
			var nf model.NotFoundError
			if !errors.As(err, &nf) {
				return err
			}
			if err := tx.CreateBankTransaction(&txns[i]); err != nil {
				return fmt.Errorf("storing %s: %w", txns[i].Reference, err)
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Unmatched lists imported transactions not yet reconciled.
func (f *Feed) Unmatched() ([]model.BankTransaction, error) {
	return f.st.UnmatchedBankTransactions()
}

// MatchTransaction reconciles an expense or payment against an imported
// bank transaction. Both sides record the link; a transaction matches
// at most once.
func (f *Feed) MatchTransaction(kind model.MatchKind, entityID, bankTxnID uint) error {
	return f.st.InTx(func(tx *store.Store) error {
		txn, err := tx.BankTransactionByID(bankTxnID)
		if err != nil {
			return err
		}
		if txn.Matched() {
			return model.ValidationError{Field: "bank_txn_id", Reason: fmt.Sprintf("already matched to %s %d", txn.MatchedKind, txn.MatchedID)}
		}

		switch kind {
		case model.MatchExpense:
			exp, err := tx.ExpenseByID(entityID)
			if err != nil {
				return err
			}
			if exp.ReconciledBankTxnID != 0 {
				return model.ValidationError{Field: "entity_id", Reason: "expense already reconciled"}
			}
			exp.ReconciledBankTxnID = bankTxnID
			if err := tx.SaveExpense(exp); err != nil {
				return err
			}
		case model.MatchPayment:
			pay, err := tx.PaymentByID(entityID)
			if err != nil {
				return err
			}
			if pay.ReconciledBankTxnID != 0 {
				return model.ValidationError{Field: "entity_id", Reason: "payment already reconciled"}
			}
			pay.ReconciledBankTxnID = bankTxnID
			if err := tx.SavePayment(pay); err != nil {
				return err
			}
		default:
			return model.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown match kind %q", kind)}
		}

		txn.MatchedKind = kind
		txn.MatchedID = entityID
		return tx.SaveBankTransaction(txn)
	})
}
