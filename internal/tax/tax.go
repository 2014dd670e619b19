// Package tax resolves tax rate references to percentages at
// calculation time.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// Engine resolves tax rate IDs against the store.
type Engine struct {
	st *store.Store
}

// NewEngine creates a tax Engine.
func NewEngine(st *store.Store) *Engine {
	return &Engine{st: st}
}

// CreateParams holds the fields for a new tax rate.
type CreateParams struct {
	Name               string
	Percentage         decimal.Decimal
	LiabilityAccountID uint
}

// Create validates and persists a tax rate.
func (e *Engine) Create(params CreateParams) (*model.TaxRate, error) {
	if params.Name == "" {
		return nil, model.ValidationError{Field: "name", Reason: "required"}
	}
	if params.Percentage.IsNegative() {
		return nil, model.ValidationError{Field: "percentage", Reason: "must not be negative"}
	}
	if params.LiabilityAccountID != 0 {
		acct, err := e.st.AccountByID(params.LiabilityAccountID)
		if err != nil {
			return nil, err
		}
		if acct.Type != model.AccountTypeLiability {
			return nil, model.ValidationError{Field: "liability_account_id", Reason: "must be a liability account"}
		}
	}
	rate := &model.TaxRate{
		Name:               params.Name,
		Percentage:         params.Percentage,
		LiabilityAccountID: params.LiabilityAccountID,
	}
	if err := e.st.CreateTaxRate(rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// Resolve returns the percentage for a rate ID. ID 0 means "no rate"
// and resolves to zero.
func (e *Engine) Resolve(rateID uint) (decimal.Decimal, error) {
	if rateID == 0 {
		return decimal.Zero, nil
	}
	rate, err := e.st.TaxRateByID(rateID)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Percentage, nil
}

// Get returns the full rate record.
func (e *Engine) Get(rateID uint) (*model.TaxRate, error) {
	return e.st.TaxRateByID(rateID)
}
