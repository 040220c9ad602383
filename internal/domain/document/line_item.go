package document

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/solobooks/solobooks/internal/types"
)

// LineItem is a priced entry on a document contributing to its totals
type LineItem struct {
	ID         string `db:"id" json:"id"`
	DocumentID string `db:"document_id" json:"document_id"`
	// Position is 1-based and order-significant
	Position    int    `db:"position" json:"position"`
	Description string `db:"description" json:"description"`
	// Quantity carries up to 4 decimal places
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPriceCents int64           `db:"unit_price_cents" json:"unit_price_cents"`
	// TaxRatePercent is a snapshot taken when the line was written, not a
	// live reference to a tax rate definition
	TaxRatePercent *decimal.Decimal `db:"tax_rate_percent" json:"tax_rate_percent,omitempty"`

	SubtotalCents int64 `db:"subtotal_cents" json:"subtotal_cents"`
	TaxCents      int64 `db:"tax_cents" json:"tax_cents"`
	TotalCents    int64 `db:"total_cents" json:"total_cents"`

	// ExpenseID links back to a billed expense when the line was created by
	// the expense billing linker
	ExpenseID *string `db:"expense_id" json:"expense_id,omitempty"`

	types.BaseModel
}

func (li *LineItem) Validate() error {
	if li.Position < 1 {
		return ierr.NewError("invalid line item position").
			WithHint("Position must be 1 or greater").
			Mark(ierr.ErrValidation)
	}

	if li.Quantity.IsNegative() {
		return ierr.NewError("negative quantity").
			WithHint("Quantity must be non negative").
			Mark(ierr.ErrValidation)
	}

	if li.UnitPriceCents < 0 {
		return ierr.NewError("negative unit price").
			WithHint("Unit price must be non negative").
			Mark(ierr.ErrValidation)
	}

	if li.TaxRatePercent != nil {
		if li.TaxRatePercent.IsNegative() || li.TaxRatePercent.GreaterThan(decimal.NewFromInt(100)) {
			return ierr.NewError("invalid tax rate").
				WithHint("Tax rate must be between 0 and 100").
				Mark(ierr.ErrValidation)
		}
	}

	if li.TotalCents != li.SubtotalCents+li.TaxCents {
		return ierr.NewError("inconsistent line item totals").
			WithHint("Line total must equal subtotal plus tax").
			Mark(ierr.ErrValidation)
	}

	return nil
}
