package document

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// LifecycleEvent is an input to the document state machine
type LifecycleEvent string

const (
	// LifecycleEventSend marks the document as delivered to the client
	LifecycleEventSend LifecycleEvent = "send"
	// LifecycleEventAccept records client acceptance of a quote
	LifecycleEventAccept LifecycleEvent = "accept"
	// LifecycleEventExpire fires lazily when a quote passes its expiry date
	LifecycleEventExpire LifecycleEvent = "expire"
	// LifecycleEventVoid cancels an invoice with no outstanding balance
	LifecycleEventVoid LifecycleEvent = "void"
)

// transitions maps (type, current status, event) to the next status. Anything
// absent from the table is an invalid transition. Voided has no outgoing
// edges anywhere; it is absolutely terminal.
var transitions = map[types.DocumentType]map[LifecycleEvent]map[types.DocumentStatus]types.DocumentStatus{
	types.DocumentTypeQuote: {
		LifecycleEventSend: {
			types.DocumentStatusDraft: types.DocumentStatusSent,
		},
		LifecycleEventAccept: {
			types.DocumentStatusDraft: types.DocumentStatusAccepted,
			types.DocumentStatusSent:  types.DocumentStatusAccepted,
		},
		LifecycleEventExpire: {
			types.DocumentStatusDraft: types.DocumentStatusExpired,
			types.DocumentStatusSent:  types.DocumentStatusExpired,
		},
	},
	types.DocumentTypeInvoice: {
		LifecycleEventSend: {
			types.DocumentStatusDraft: types.DocumentStatusSent,
		},
		LifecycleEventVoid: {
			types.DocumentStatusDraft:         types.DocumentStatusVoided,
			types.DocumentStatusSent:          types.DocumentStatusVoided,
			types.DocumentStatusUnpaid:        types.DocumentStatusVoided,
			types.DocumentStatusPartiallyPaid: types.DocumentStatusVoided,
			types.DocumentStatusPaid:          types.DocumentStatusVoided,
		},
	},
}

// Transition returns the status that results from applying event to a
// document of the given type in the given status. It is pure; preconditions
// that depend on document data (line items present, zero balance) are checked
// by the service layer before the event is applied.
func Transition(docType types.DocumentType, current types.DocumentStatus, event LifecycleEvent) (types.DocumentStatus, error) {
	byEvent, ok := transitions[docType]
	if !ok {
		return "", ierr.NewError("unknown document type").
			WithHintf("No lifecycle defined for document type %s", docType).
			Mark(ierr.ErrValidation)
	}

	next, ok := byEvent[event][current]
	if !ok {
		return "", ierr.NewError("invalid lifecycle transition").
			WithHintf("A %s in status %s does not allow %s", docType, current, event).
			WithReportableDetails(map[string]any{
				"document_type": docType,
				"status":        current,
				"event":         event,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return next, nil
}

// DerivePaymentStatus derives an invoice's status from its payment totals.
// Callers must not apply the result while the invoice is draft or voided.
func DerivePaymentStatus(amountPaidCents, totalCents int64) types.DocumentStatus {
	switch {
	case amountPaidCents <= 0:
		return types.DocumentStatusUnpaid
	case amountPaidCents < totalCents:
		return types.DocumentStatusPartiallyPaid
	default:
		return types.DocumentStatusPaid
	}
}
