package document

import (
	"time"

	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// Document represents a quote or an invoice, the unit of billing. Monetary
// fields are materialized in cents and owned by the service layer; storage is
// dumb persistence.
type Document struct {
	ID           string             `db:"id" json:"id"`
	DocumentType types.DocumentType `db:"document_type" json:"document_type"`
	// DocumentNumber is nil until the document is finalized and immutable
	// once set; unique per tenant and type
	DocumentNumber *string              `db:"document_number" json:"document_number"`
	DocumentStatus types.DocumentStatus `db:"document_status" json:"document_status"`
	ClientID       string               `db:"client_id" json:"client_id"`
	ProjectID      *string              `db:"project_id" json:"project_id,omitempty"`
	// PONumber is a one-time snapshot of the project's default PO number
	// taken at creation; never re-synced afterwards
	PONumber  *string    `db:"po_number" json:"po_number,omitempty"`
	Notes     string     `db:"notes" json:"notes,omitempty"`
	IssueDate *time.Time `db:"issue_date" json:"issue_date,omitempty"`
	// DueDate applies to invoices, ExpiryDate to quotes
	DueDate    *time.Time `db:"due_date" json:"due_date,omitempty"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`

	SubtotalCents   int64 `db:"subtotal_cents" json:"subtotal_cents"`
	TaxTotalCents   int64 `db:"tax_total_cents" json:"tax_total_cents"`
	TotalCents      int64 `db:"total_cents" json:"total_cents"`
	AmountPaidCents int64 `db:"amount_paid_cents" json:"amount_paid_cents"`
	BalanceDueCents int64 `db:"balance_due_cents" json:"balance_due_cents"`

	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	AcceptedAt  *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	FinalizedAt *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	VoidedAt    *time.Time `db:"voided_at" json:"voided_at,omitempty"`
	ArchivedAt  *time.Time `db:"archived_at" json:"archived_at,omitempty"`

	LineItems []*LineItem    `db:"-" json:"line_items,omitempty"`
	Metadata  types.Metadata `db:"metadata" json:"metadata,omitempty"`

	// Version guards concurrent updates; every successful write increments it
	Version int `db:"version" json:"version"`
	types.BaseModel
}

func (d *Document) IsQuote() bool {
	return d.DocumentType == types.DocumentTypeQuote
}

func (d *Document) IsInvoice() bool {
	return d.DocumentType == types.DocumentTypeInvoice
}

func (d *Document) IsFinalized() bool {
	return d.FinalizedAt != nil
}

func (d *Document) IsVoided() bool {
	return d.DocumentStatus == types.DocumentStatusVoided
}

// IsExpirable reports whether lazy expiry applies: an unaccepted,
// non-terminal quote whose expiry date is strictly before today. The
// comparison is at date granularity in UTC, so a quote expiring today stays
// open for the whole day.
func (d *Document) IsExpirable(now time.Time) bool {
	if !d.IsQuote() || d.ExpiryDate == nil || d.AcceptedAt != nil {
		return false
	}
	if d.DocumentStatus == types.DocumentStatusExpired || d.DocumentStatus == types.DocumentStatusAccepted {
		return false
	}
	return d.ExpiryDate.UTC().Truncate(24 * time.Hour).Before(now.UTC().Truncate(24 * time.Hour))
}

// Validate enforces the materialized-total invariants
func (d *Document) Validate() error {
	if err := d.DocumentType.Validate(); err != nil {
		return err
	}

	if err := d.DocumentStatus.Validate(d.DocumentType); err != nil {
		return err
	}

	if d.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHint("Document must belong to a client").
			Mark(ierr.ErrValidation)
	}

	if d.SubtotalCents < 0 || d.TaxTotalCents < 0 || d.TotalCents < 0 {
		return ierr.NewError("negative document totals").
			WithHint("Totals must be non negative").
			Mark(ierr.ErrValidation)
	}

	if d.TotalCents != d.SubtotalCents+d.TaxTotalCents {
		return ierr.NewError("inconsistent document totals").
			WithHint("Total must equal subtotal plus tax").
			WithReportableDetails(map[string]any{
				"subtotal_cents":  d.SubtotalCents,
				"tax_total_cents": d.TaxTotalCents,
				"total_cents":     d.TotalCents,
			}).
			Mark(ierr.ErrValidation)
	}

	if d.AmountPaidCents < 0 {
		return ierr.NewError("negative amount paid").
			WithHint("Amount paid must be non negative").
			Mark(ierr.ErrValidation)
	}

	if d.BalanceDueCents != d.TotalCents-d.AmountPaidCents {
		return ierr.NewError("inconsistent balance due").
			WithHint("Balance due must equal total minus amount paid").
			Mark(ierr.ErrValidation)
	}

	if d.BalanceDueCents < 0 {
		return ierr.NewError("negative balance due").
			WithHint("Amount paid must not exceed the document total").
			Mark(ierr.ErrValidation)
	}

	if d.ArchivedAt != nil && d.IsInvoice() {
		if d.DocumentStatus != types.DocumentStatusPaid && d.DocumentStatus != types.DocumentStatusVoided {
			return ierr.NewError("archived unpaid invoice").
				WithHint("Only paid or voided invoices can be archived").
				Mark(ierr.ErrValidation)
		}
	}

	for _, item := range d.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}
