package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes documents that share the invoice shape.
type InvoiceType string

const (
	TypeInvoice    InvoiceType = "invoice"
	TypeEstimate   InvoiceType = "estimate"
	TypeCreditNote InvoiceType = "credit_note"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// InvoiceStatus is the stored lifecycle state of an invoice.
//
// overdue is never stored: it is derived on read from due_date and
// amount_due (see EffectiveStatus).
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusSent      InvoiceStatus = "sent"
	StatusViewed    InvoiceStatus = "viewed"
	StatusPartial   InvoiceStatus = "partial"
	StatusPaid      InvoiceStatus = "paid"
	StatusOverdue   InvoiceStatus = "overdue"
	StatusCancelled InvoiceStatus = "cancelled"
)

// CanTransition reports whether a stored status change from s to next is
// allowed. Derived states (overdue) are not stored and never appear here.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusSent || next == StatusCancelled
	case StatusSent:
		return next == StatusViewed || next == StatusPartial || next == StatusPaid || next == StatusCancelled
	case StatusViewed:
		return next == StatusPartial || next == StatusPaid
	case StatusPartial:
		return next == StatusPaid
	case StatusPaid, StatusCancelled:
		return false
	}
	return false
}

// Terminal reports whether the status rejects all further mutation.
// Corrections to a terminal invoice are new credit-note documents.
func (s InvoiceStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Payable reports whether payments may be allocated against this status.
func (s InvoiceStatus) Payable() bool {
	return s == StatusSent || s == StatusViewed || s == StatusPartial
}

// Invoice is a billing document. Monetary fields are derived by the
// invoice engine and become append-only once the invoice is posted to
// the journal; corrections are new credit-note invoices.
type Invoice struct {
	ID            uint        `gorm:"primaryKey"`
	Number        string      `gorm:"uniqueIndex;not null"`
	Type          InvoiceType `gorm:"not null;default:'invoice'"`
	ClientID      uint        `gorm:"not null;index"`
	Status        InvoiceStatus
	IssueDate     time.Time
	DueDate       time.Time
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	DiscountType  DiscountType
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2)"`
	Shipping      decimal.Decimal `gorm:"type:decimal(20,2)"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,2)"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,2)"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,2)"`
	Total         decimal.Decimal `gorm:"type:decimal(20,2)"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,2)"`
	TaxRateID     uint            // invoice-level rate, used by items without their own
	ReversesID    uint            `gorm:"index"` // credit note: the invoice it reverses
	Notes         string
	Meta          Extensions `gorm:"type:text"`
	SentAt        *time.Time
	ViewedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AmountDue is always total minus amount_paid; it is never stored.
func (i *Invoice) AmountDue() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// EffectiveStatus derives overdue for display: a payable invoice past its
// due date with a balance outstanding reads as overdue without a stored
// transition.
func (i *Invoice) EffectiveStatus(asOf time.Time) InvoiceStatus {
	if i.Status.Payable() && asOf.After(i.DueDate) && i.AmountDue().IsPositive() {
		return StatusOverdue
	}
	return i.Status
}

// DaysPastDue returns whole days between due date and asOf; zero or
// negative means not yet due.
func (i *Invoice) DaysPastDue(asOf time.Time) int {
	return int(asOf.Sub(i.DueDate).Hours() / 24)
}

// InvoiceItem is one billable line owned by exactly one invoice.
// LineTotal includes the item's own tax, when it carries a rate.
type InvoiceItem struct {
	ID               uint   `gorm:"primaryKey"`
	InvoiceID        uint   `gorm:"not null;index"`
	Description      string `gorm:"not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	DiscountType     DiscountType
	DiscountValue    decimal.Decimal `gorm:"type:decimal(20,2)"`
	TaxRateID        uint            // 0 = fall back to the invoice-level rate
	RevenueAccountID uint            // 0 = ledger default sales account
	LineSubtotal     decimal.Decimal `gorm:"type:decimal(20,2)"` // post item-discount, pre-tax
	LineTax          decimal.Decimal `gorm:"type:decimal(20,2)"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(20,2)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
