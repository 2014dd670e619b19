// Package invoicing owns the invoice lifecycle: total computation,
// document numbering, the status machine, and the credit-note path.
package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/money"
)

// RateResolver resolves a tax rate reference to a percentage.
type RateResolver interface {
	Resolve(rateID uint) (decimal.Decimal, error)
}

// LineInput is one item handed to the engine.
type LineInput struct {
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
	TaxRateID     uint // 0 = use the invoice-level rate
}

// Input is everything the engine needs to compute invoice totals.
type Input struct {
	Lines         []LineInput
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
	TaxRateID     uint // applied only to lines without their own rate
	Shipping      decimal.Decimal
}

// LineResult carries the computed amounts of one line. Tax holds the
// line's own-rate tax only; invoice-level tax on rate-less lines is part
// of Totals.Tax but not attributed to the line.
type LineResult struct {
	Subtotal decimal.Decimal // post item-discount, pre-tax
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals is the engine's output. Every field is rounded to 2 places.
type Totals struct {
	Lines    []LineResult
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives invoice totals in a fixed order, rounding half-up to
// 2 places after every step so sub-totals always foot to the displayed
// line values:
//
//  1. per line: quantity x unit price, item discount, own-rate tax
//  2. subtotal = sum of post-discount line amounts
//  3. invoice-level discount against the subtotal, clamped to it
//  4. tax = own-rate line taxes + the invoice-level rate applied to each
//     rate-less line's amount net of its share of the invoice discount
//  5. total = subtotal - discount + tax + shipping
func Compute(in Input, rates RateResolver) (*Totals, error) {
	if in.Shipping.IsNegative() {
		return nil, model.ValidationError{Field: "shipping", Reason: "must not be negative"}
	}
	if in.DiscountValue.IsNegative() {
		return nil, model.ValidationError{Field: "discount", Reason: "must not be negative"}
	}

	out := &Totals{
		Lines:    make([]LineResult, len(in.Lines)),
		Shipping: money.Round(in.Shipping),
	}

	for i, line := range in.Lines {
		if line.Quantity.IsNegative() {
			return nil, model.ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		if line.UnitPrice.IsNegative() {
			return nil, model.ValidationError{Field: "unit_price", Reason: "must not be negative"}
		}
		if line.DiscountValue.IsNegative() {
			return nil, model.ValidationError{Field: "item discount", Reason: "must not be negative"}
		}

		sub := money.Round(line.Quantity.Mul(line.UnitPrice))
		switch line.DiscountType {
		case model.DiscountPercentage:
			sub = sub.Sub(money.Percent(sub, line.DiscountValue))
		case model.DiscountFixed:
			sub = sub.Sub(line.DiscountValue)
		}
		sub = money.ClampFloor(money.Round(sub), decimal.Zero)

		var lineTax decimal.Decimal
		if line.TaxRateID != 0 {
			pct, err := rates.Resolve(line.TaxRateID)
			if err != nil {
				return nil, err
			}
			lineTax = money.Percent(sub, pct)
		}

		out.Lines[i] = LineResult{
			Subtotal: sub,
			Tax:      lineTax,
			Total:    sub.Add(lineTax),
		}
		out.Subtotal = out.Subtotal.Add(sub)
	}

	switch in.DiscountType {
	case model.DiscountPercentage:
		out.Discount = money.Min(money.Percent(out.Subtotal, in.DiscountValue), out.Subtotal)
	case model.DiscountFixed:
		out.Discount = money.Min(money.Round(in.DiscountValue), out.Subtotal)
	}

	// Invoice-level tax applies to rate-less lines net of their share of
	// the invoice discount; Scenario: 8% over (100.00 - 10.00) = 7.20.
	bases := make([]decimal.Decimal, len(out.Lines))
	for i, lr := range out.Lines {
		bases[i] = lr.Subtotal
	}
	shares := money.Apportion(out.Discount, bases)

	var invoicePct decimal.Decimal
	if in.TaxRateID != 0 {
		pct, err := rates.Resolve(in.TaxRateID)
		if err != nil {
			return nil, err
		}
		invoicePct = pct
	}

	for i, line := range in.Lines {
		if line.TaxRateID != 0 {
			out.Tax = out.Tax.Add(out.Lines[i].Tax)
			continue
		}
		if invoicePct.IsZero() {
			continue
		}
		out.Tax = out.Tax.Add(money.Percent(out.Lines[i].Subtotal.Sub(shares[i]), invoicePct))
	}

	out.Total = out.Subtotal.Sub(out.Discount).Add(out.Tax).Add(out.Shipping)
	return out, nil
}
