package document

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/shopspring/decimal"
)

// QuantityPrecision is the number of decimal places a line quantity carries
const QuantityPrecision = 4

// LineItemAmounts holds the derived monetary fields of a single line
type LineItemAmounts struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// DocumentTotals holds the materialized totals of a document
type DocumentTotals struct {
	SubtotalCents int64
	TaxTotalCents int64
	TotalCents    int64
}

// ComputeLineItem computes the derived amounts of one line. Rounding is
// round-half-up at each step: subtotal = round(quantity * unit price), tax =
// round(subtotal * rate/100), total = subtotal + tax. A nil tax rate means no
// tax on the line.
func ComputeLineItem(quantity decimal.Decimal, unitPriceCents int64, taxRatePercent *decimal.Decimal) (LineItemAmounts, error) {
	if quantity.IsNegative() {
		return LineItemAmounts{}, ierr.NewError("negative quantity").
			WithHint("Quantity must be non negative").
			Mark(ierr.ErrValidation)
	}
	if unitPriceCents < 0 {
		return LineItemAmounts{}, ierr.NewError("negative unit price").
			WithHint("Unit price must be non negative").
			Mark(ierr.ErrValidation)
	}
	if taxRatePercent != nil {
		if taxRatePercent.IsNegative() || taxRatePercent.GreaterThan(decimal.NewFromInt(100)) {
			return LineItemAmounts{}, ierr.NewError("invalid tax rate").
				WithHint("Tax rate must be between 0 and 100").
				Mark(ierr.ErrValidation)
		}
	}

	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative operands allowed here
	qty := quantity.Round(QuantityPrecision)
	subtotal := qty.Mul(decimal.NewFromInt(unitPriceCents)).Round(0)

	tax := decimal.Zero
	if taxRatePercent != nil {
		tax = subtotal.Mul(*taxRatePercent).Div(decimal.NewFromInt(100)).Round(0)
	}

	return LineItemAmounts{
		SubtotalCents: subtotal.IntPart(),
		TaxCents:      tax.IntPart(),
		TotalCents:    subtotal.IntPart() + tax.IntPart(),
	}, nil
}

// ApplyAmounts computes and writes the derived fields of the line in place
func (li *LineItem) ApplyAmounts() error {
	amounts, err := ComputeLineItem(li.Quantity, li.UnitPriceCents, li.TaxRatePercent)
	if err != nil {
		return err
	}
	li.Quantity = li.Quantity.Round(QuantityPrecision)
	li.SubtotalCents = amounts.SubtotalCents
	li.TaxCents = amounts.TaxCents
	li.TotalCents = amounts.TotalCents
	return nil
}

// ComputeDocumentTotals aggregates per-line results. Totals are always the
// sum of the already rounded line amounts, never recomputed from aggregate
// quantity and price, so rounding never drifts across lines. Empty input
// yields all zeros.
func ComputeDocumentTotals(items []*LineItem) DocumentTotals {
	var totals DocumentTotals
	for _, item := range items {
		totals.SubtotalCents += item.SubtotalCents
		totals.TaxTotalCents += item.TaxCents
		totals.TotalCents += item.TotalCents
	}
	return totals
}

// ApplyTotals recomputes the document's materialized totals from its line
// items and re-derives the balance from the amount already paid
func (d *Document) ApplyTotals() {
	totals := ComputeDocumentTotals(d.LineItems)
	d.SubtotalCents = totals.SubtotalCents
	d.TaxTotalCents = totals.TaxTotalCents
	d.TotalCents = totals.TotalCents
	d.BalanceDueCents = d.TotalCents - d.AmountPaidCents
}
