package types

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/samber/lo"
)

// DocumentType distinguishes the two kinds of billing documents
type DocumentType string

const (
	// DocumentTypeQuote is a priced offer sent to a client for acceptance
	DocumentTypeQuote DocumentType = "quote"
	// DocumentTypeInvoice is a demand for payment against delivered work
	DocumentTypeInvoice DocumentType = "invoice"
)

func (t DocumentType) String() string {
	return string(t)
}

func (t DocumentType) Validate() error {
	allowed := []DocumentType{
		DocumentTypeQuote,
		DocumentTypeInvoice,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid document type").
			WithHint("Please provide a valid document type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DocumentStatus represents the current state of a document in its lifecycle.
// Quotes move draft -> sent -> accepted | expired. Invoices move
// draft -> sent and are then driven by the payment ledger between unpaid,
// partially_paid and paid; voided is absolutely terminal.
type DocumentStatus string

const (
	DocumentStatusDraft         DocumentStatus = "draft"
	DocumentStatusSent          DocumentStatus = "sent"
	DocumentStatusAccepted      DocumentStatus = "accepted"
	DocumentStatusExpired       DocumentStatus = "expired"
	DocumentStatusUnpaid        DocumentStatus = "unpaid"
	DocumentStatusPartiallyPaid DocumentStatus = "partially_paid"
	DocumentStatusPaid          DocumentStatus = "paid"
	DocumentStatusVoided        DocumentStatus = "voided"
)

func (s DocumentStatus) String() string {
	return string(s)
}

// Validate checks that the status is a member of the given document type's
// state space.
func (s DocumentStatus) Validate(docType DocumentType) error {
	allowed := quoteStatuses
	if docType == DocumentTypeInvoice {
		allowed = invoiceStatuses
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid document status").
			WithHintf("Status %s is not valid for a %s", s, docType).
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no automatic transition may leave this status
func (s DocumentStatus) IsTerminal() bool {
	return lo.Contains([]DocumentStatus{
		DocumentStatusAccepted,
		DocumentStatusExpired,
		DocumentStatusPaid,
		DocumentStatusVoided,
	}, s)
}

var (
	quoteStatuses = []DocumentStatus{
		DocumentStatusDraft,
		DocumentStatusSent,
		DocumentStatusAccepted,
		DocumentStatusExpired,
	}
	invoiceStatuses = []DocumentStatus{
		DocumentStatusDraft,
		DocumentStatusSent,
		DocumentStatusUnpaid,
		DocumentStatusPartiallyPaid,
		DocumentStatusPaid,
		DocumentStatusVoided,
	}
)
