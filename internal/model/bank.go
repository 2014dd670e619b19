package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchKind names what a bank transaction was reconciled against.
type MatchKind string

const (
	MatchExpense MatchKind = "expense"
	MatchPayment MatchKind = "payment"
)

// BankTransaction is a raw feed row supplied by the bank-feed
// collaborator. The core stores it and records matches; it performs no
// fuzzy matching itself.
type BankTransaction struct {
	ID          uint            `gorm:"primaryKey"`
	Date        time.Time       `gorm:"index"`
	Description string
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Reference   string          `gorm:"uniqueIndex"` // dedup key from the feed
	Source      string          // parser format, e.g. "chase"
	MatchedKind MatchKind
	MatchedID   uint
	CreatedAt   time.Time
}

// Matched reports whether the transaction has been reconciled.
func (t *BankTransaction) Matched() bool { return t.MatchedKind != "" }
