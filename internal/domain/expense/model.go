package expense

import (
	"time"

	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// Expense is a cost the consultant incurred, optionally billable to a client
// through the expense billing linker.
type Expense struct {
	ID               string     `db:"id" json:"id"`
	Description      string     `db:"description" json:"description"`
	Category         string     `db:"category" json:"category,omitempty"`
	Vendor           string     `db:"vendor" json:"vendor,omitempty"`
	ExpenseDate      time.Time  `db:"expense_date" json:"expense_date"`
	TotalAmountCents int64      `db:"total_amount_cents" json:"total_amount_cents"`
	ProjectID        *string    `db:"project_id" json:"project_id,omitempty"`
	Billable         bool       `db:"billable" json:"billable"`

	// BillingStatus is billed iff LinkedInvoiceID references a same-tenant
	// invoice; set only through the expense billing linker
	BillingStatus   types.ExpenseBillingStatus `db:"billing_status" json:"billing_status"`
	LinkedInvoiceID *string                    `db:"linked_invoice_id" json:"linked_invoice_id,omitempty"`

	types.BaseModel
}

func (e *Expense) Validate() error {
	if e.Description == "" {
		return ierr.NewError("description is required").
			WithHint("Please provide an expense description").
			Mark(ierr.ErrValidation)
	}

	if e.TotalAmountCents <= 0 {
		return ierr.NewError("invalid expense amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}

	if e.ExpenseDate.IsZero() {
		return ierr.NewError("expense date is required").
			WithHint("Please provide the expense date").
			Mark(ierr.ErrValidation)
	}

	if err := e.BillingStatus.Validate(); err != nil {
		return err
	}

	// linkage invariant: billed iff linked
	if (e.BillingStatus == types.ExpenseBillingStatusBilled) != (e.LinkedInvoiceID != nil) {
		return ierr.NewError("inconsistent billing linkage").
			WithHint("A billed expense must be linked to an invoice and an unbilled one must not").
			Mark(ierr.ErrValidation)
	}

	return nil
}
