package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceType names the kind of event a journal entry records.
type ReferenceType string

const (
	RefInvoice    ReferenceType = "invoice"
	RefCreditNote ReferenceType = "credit_note"
	RefPayment    ReferenceType = "payment"
	RefExpense    ReferenceType = "expense"
	RefManual     ReferenceType = "manual"
)

// JournalEntry is one balanced financial event. Once Posted is set the
// entry and its lines are append-only; amendments are new entries.
type JournalEntry struct {
	ID          uint   `gorm:"primaryKey"`
	Number      string `gorm:"uniqueIndex;not null"` // "YYYY-MM-NNN"
	Date        time.Time
	Description string
	RefType     ReferenceType `gorm:"index"`
	RefID       uint          `gorm:"index"`
	Posted      bool
	Lines       []JournalEntryLine `gorm:"foreignKey:EntryID"`
	CreatedAt   time.Time
}

// Balanced reports whether the entry's debits equal its credits exactly.
func (e *JournalEntry) Balanced() bool {
	debits, credits := e.Footings()
	return debits.Equal(credits)
}

// Footings returns the summed debit and credit columns.
func (e *JournalEntry) Footings() (debits, credits decimal.Decimal) {
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// JournalEntryLine is one side of a double entry. Exactly one of
// Debit/Credit is non-zero and both are non-negative.
type JournalEntryLine struct {
	ID        uint            `gorm:"primaryKey"`
	EntryID   uint            `gorm:"not null;index"`
	AccountID uint            `gorm:"not null;index"`
	Debit     decimal.Decimal `gorm:"type:decimal(20,2)"`
	Credit    decimal.Decimal `gorm:"type:decimal(20,2)"`
	Memo      string
}

// OneSided reports whether the line carries exactly one non-negative side.
func (l JournalEntryLine) OneSided() bool {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return false
	}
	return l.Debit.IsZero() != l.Credit.IsZero()
}
