package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a billing counterparty on the receivable side. Balance is a
// projection of the amount_due across the client's open invoices.
type Client struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string
	TermsNetDays int             `gorm:"not null;default:30"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Vendor is a counterparty on the payable side. Balance projects unpaid bills.
type Vendor struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string
	TermsNetDays int             `gorm:"not null;default:30"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
