package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate maps a named rate to a percentage. LiabilityAccountID, when set,
// receives the tax side of postings that use this rate; otherwise the
// ledger's default tax-payable account does.
type TaxRate struct {
	ID                 uint            `gorm:"primaryKey"`
	Name               string          `gorm:"not null"`
	Percentage         decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	LiabilityAccountID uint            `gorm:"index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
