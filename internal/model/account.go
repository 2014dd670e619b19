package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether debits increase balances of this type.
// Assets and expenses are debit-normal; liabilities, equity and revenue
// are credit-normal.
func (t AccountType) DebitNormal() bool {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return true
	}
	return false
}

// Account is one node in the chart of accounts. Balance is a cached
// projection of the signed sum of posted journal lines touching the
// account, never a source of truth; recomputing from the journal must
// reproduce it exactly.
type Account struct {
	ID          uint        `gorm:"primaryKey"`
	Code        string      `gorm:"uniqueIndex;not null"`
	Name        string      `gorm:"not null"`
	Type        AccountType `gorm:"not null"`
	Subtype     string
	ParentID    uint `gorm:"index"` // 0 = top-level
	Description string
	Balance     decimal.Decimal `gorm:"type:decimal(20,2)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyLine adjusts the cached balance for one posted line according to
// the account's normal side.
func (a *Account) ApplyLine(debit, credit decimal.Decimal) {
	if a.Type.DebitNormal() {
		a.Balance = a.Balance.Add(debit).Sub(credit)
		return
	}
	a.Balance = a.Balance.Add(credit).Sub(debit)
}
