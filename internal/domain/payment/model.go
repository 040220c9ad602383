package payment

import (
	"time"

	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// Payment is one entry in the append-only payment ledger of an invoice.
// There is no refund or reversal model; a mistaken entry is removed as a
// correction, which soft deletes the row and triggers a recompute.
type Payment struct {
	ID string `db:"id" json:"id"`
	// InvoiceID must reference an invoice-type document of the same tenant
	InvoiceID   string    `db:"invoice_id" json:"invoice_id"`
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	// Method and Reference are informational
	Method    *types.PaymentMethod `db:"method" json:"method,omitempty"`
	Reference *string              `db:"reference" json:"reference,omitempty"`
	Notes     string               `db:"notes" json:"notes,omitempty"`

	types.BaseModel
}

func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Payment must reference an invoice").
			Mark(ierr.ErrValidation)
	}

	if p.AmountCents <= 0 {
		return ierr.NewError("invalid payment amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}

	if p.PaymentDate.IsZero() {
		return ierr.NewError("payment date is required").
			WithHint("Please provide the payment date").
			Mark(ierr.ErrValidation)
	}

	if p.Method != nil {
		if err := p.Method.Validate(); err != nil {
			return err
		}
	}

	return nil
}
