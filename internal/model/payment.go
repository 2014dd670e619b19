package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDirection distinguishes money in from money out.
type PaymentDirection string

const (
	PaymentReceived PaymentDirection = "received"
	PaymentSent     PaymentDirection = "sent"
	PaymentRefund   PaymentDirection = "refund"
)

// Valid reports whether d is a known direction.
func (d PaymentDirection) Valid() bool {
	switch d {
	case PaymentReceived, PaymentSent, PaymentRefund:
		return true
	}
	return false
}

// Payment records money moving on a date. A received payment may be split
// across invoices via PaymentAllocations; the allocations never sum past
// the payment amount.
type Payment struct {
	ID          uint             `gorm:"primaryKey"`
	Direction   PaymentDirection `gorm:"not null"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,2);not null"`
	Method      string
	Date        time.Time `gorm:"index"`
	ExternalRef string    `gorm:"index"` // capture collaborator's reference
	ReconciledBankTxnID uint `gorm:"index"` // 0 = unmatched
	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentAllocation applies part of a payment to one invoice.
type PaymentAllocation struct {
	ID        uint            `gorm:"primaryKey"`
	PaymentID uint            `gorm:"not null;index"`
	InvoiceID uint            `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time
}
