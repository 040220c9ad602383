package dto

import (
	"context"
	"time"

	"github.com/solobooks/solobooks/internal/domain/payment"
	"github.com/solobooks/solobooks/internal/types"
	"github.com/solobooks/solobooks/internal/validator"
)

// RecordPaymentRequest appends one entry to an invoice's payment ledger
type RecordPaymentRequest struct {
	InvoiceID   string               `json:"invoice_id" validate:"required"`
	PaymentDate time.Time            `json:"payment_date" validate:"required"`
	AmountCents int64                `json:"amount_cents" validate:"gt=0"`
	Method      *types.PaymentMethod `json:"method,omitempty"`
	Reference   *string              `json:"reference,omitempty"`
	Notes       string               `json:"notes,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Method != nil {
		if err := r.Method.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RecordPaymentRequest) ToPayment(ctx context.Context) *payment.Payment {
	return &payment.Payment{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:   r.InvoiceID,
		PaymentDate: r.PaymentDate,
		AmountCents: r.AmountCents,
		Method:      r.Method,
		Reference:   r.Reference,
		Notes:       r.Notes,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// PaymentResponse is a single ledger entry
type PaymentResponse struct {
	*payment.Payment
}

func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{Payment: p}
}

// RecordPaymentResponse returns the ledger entry together with the invoice it
// updated
type RecordPaymentResponse struct {
	Payment *PaymentResponse  `json:"payment"`
	Invoice *DocumentResponse `json:"invoice"`
}

// ListPaymentsResponse is a paginated payment list
type ListPaymentsResponse struct {
	Items      []*PaymentResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
