package cart

import "github.com/shopspring/decimal"

// taxRate is the flat 5% tax applied to every order subtotal.
var taxRate = decimal.RequireFromString("0.05")

// Totals holds the amounts derived from the current cart lines. They are
// recomputed on every read and never stored.
type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// TotalsFor computes totals for an arbitrary line set. Tax is rounded half up
// (decimal.Round rounds half away from zero, which coincides with half up for
// the non-negative amounts a cart produces).
func TotalsFor(lines []Line) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	tax := decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
