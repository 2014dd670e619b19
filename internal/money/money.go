// Package money holds the fixed-point conventions of the ledger: two
// decimal places everywhere, rounded half-up after every derived step so
// sub-totals always foot exactly to displayed values.
package money

import "github.com/shopspring/decimal"

// Round rounds to 2 decimal places, half away from zero. All monetary
// amounts in the ledger are non-negative magnitudes, so this is
// round-half-up for every value that crosses it.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent applies pct (e.g. 8 for 8%) to amount and rounds.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(decimal.NewFromInt(100)))
}

// ClampFloor returns d, or floor if d is below it.
func ClampFloor(d, floor decimal.Decimal) decimal.Decimal {
	if d.LessThan(floor) {
		return floor
	}
	return d
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Apportion splits total across weights pro-rata, rounding each share
// to 2 places, with the final non-zero weight absorbing the rounding
// residual so the shares always foot to total exactly.
func Apportion(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	if sum.IsZero() || total.IsZero() {
		return shares
	}

	last := -1
	for i, w := range weights {
		if !w.IsZero() {
			last = i
		}
	}

	allocated := decimal.Zero
	for i, w := range weights {
		if w.IsZero() || i == last {
			continue
		}
		shares[i] = Round(total.Mul(w).Div(sum))
		allocated = allocated.Add(shares[i])
	}
	shares[last] = total.Sub(allocated)
	return shares
}

// TwoPlaces reports whether d has no more than 2 decimal places.
func TwoPlaces(d decimal.Decimal) bool {
	scaled := d.Mul(decimal.NewFromInt(100))
	return scaled.Equal(scaled.Truncate(0))
}
