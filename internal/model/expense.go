package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a cost incurred with a vendor, categorized against an
// expense account. Paying it posts a journal entry; a billable expense
// can later be attached to a client invoice.
type Expense struct {
	ID               uint            `gorm:"primaryKey"`
	VendorID         uint            `gorm:"not null;index"`
	Description      string          `gorm:"not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,2);not null"` // pre-tax
	TaxAmount        decimal.Decimal `gorm:"type:decimal(20,2)"`
	CategoryAccountID uint           `gorm:"not null;index"`
	Date             time.Time       `gorm:"index"`
	Paid             bool            `gorm:"index"`
	PaidAt           *time.Time
	Billable         bool
	BillableClientID uint `gorm:"index"`
	BilledInvoiceID  uint `gorm:"index"` // set once attached to an invoice
	ReconciledBankTxnID uint `gorm:"index"`
	Meta             Extensions `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Total is the amount charged including tax.
func (e *Expense) Total() decimal.Decimal {
	return e.Amount.Add(e.TaxAmount)
}
