package service

import (
	"context"
	"time"

	"github.com/solobooks/solobooks/internal/api/dto"
	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// PaymentService maintains the append-only payment ledger of invoices. Every
// ledger change recomputes the invoice's paid amount and balance and, outside
// draft and voided, re-derives its payment status.
type PaymentService interface {
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error)
	RemovePayment(ctx context.Context, id string) (*dto.DocumentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		recorded *dto.PaymentResponse
		invoice  *document.Document
	)
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			doc, err := s.DocumentRepo.Get(ctx, req.InvoiceID)
			if err != nil {
				return err
			}

			if !doc.IsInvoice() {
				return ierr.NewError("document is not an invoice").
					WithHint("Payments can only be recorded against invoices").
					WithReportableDetails(map[string]any{
						"document_id":   doc.ID,
						"document_type": doc.DocumentType,
					}).
					Mark(ierr.ErrValidation)
			}

			if doc.IsVoided() {
				return ierr.NewError("invoice is voided").
					WithHint("Payments cannot be recorded against a voided invoice").
					Mark(ierr.ErrInvalidOperation)
			}

			if req.AmountCents > doc.BalanceDueCents {
				return ierr.NewError("payment exceeds outstanding balance").
					WithHint("Amount must not exceed the invoice's balance due").
					WithReportableDetails(map[string]any{
						"invoice_id":        doc.ID,
						"amount_cents":      req.AmountCents,
						"balance_due_cents": doc.BalanceDueCents,
					}).
					Mark(ierr.ErrValidation)
			}

			p := req.ToPayment(ctx)
			if err := p.Validate(); err != nil {
				return err
			}

			if err := s.PaymentRepo.Create(ctx, p); err != nil {
				return err
			}

			doc, err = s.syncInvoiceWithLedger(ctx, doc)
			if err != nil {
				return err
			}

			recorded = dto.NewPaymentResponse(p)
			invoice = doc
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"payment_id", recorded.ID,
		"invoice_id", invoice.ID,
		"amount_cents", recorded.AmountCents,
	)

	return &dto.RecordPaymentResponse{
		Payment: recorded,
		Invoice: dto.NewDocumentResponse(invoice),
	}, nil
}

// RemovePayment corrects a mistaken ledger entry. The row is soft deleted, so
// the ledger stays append-only, and the invoice is recomputed from the
// remaining entries.
func (s *paymentService) RemovePayment(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var invoice *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			p, err := s.PaymentRepo.Get(ctx, id)
			if err != nil {
				return err
			}

			doc, err := s.DocumentRepo.Get(ctx, p.InvoiceID)
			if err != nil {
				return err
			}

			if doc.IsVoided() {
				return ierr.NewError("invoice is voided").
					WithHint("The ledger of a voided invoice cannot be changed").
					Mark(ierr.ErrInvalidOperation)
			}

			if doc.ArchivedAt != nil {
				return ierr.NewError("invoice is archived").
					WithHint("The ledger of an archived invoice cannot be changed").
					Mark(ierr.ErrInvalidOperation)
			}

			p.Status = types.StatusDeleted
			if err := s.PaymentRepo.Update(ctx, p); err != nil {
				return err
			}

			doc, err = s.syncInvoiceWithLedger(ctx, doc)
			if err != nil {
				return err
			}

			invoice = doc
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("removed payment", "payment_id", id, "invoice_id", invoice.ID)
	return dto.NewDocumentResponse(invoice), nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = &types.PaymentFilter{}
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, dto.NewPaymentResponse(p))
	}

	return &dto.ListPaymentsResponse{
		Items: items,
		Pagination: types.PaginationResponse{
			Total:  count,
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
		},
	}, nil
}

// syncInvoiceWithLedger recomputes the invoice's paid amount and balance from
// the active ledger entries and re-derives its payment status. Draft and
// voided statuses are never overridden by payment math.
func (s *paymentService) syncInvoiceWithLedger(ctx context.Context, doc *document.Document) (*document.Document, error) {
	payments, err := s.PaymentRepo.ListByInvoice(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	var paid int64
	for _, p := range payments {
		paid += p.AmountCents
	}

	doc.AmountPaidCents = paid
	doc.BalanceDueCents = doc.TotalCents - paid

	if doc.DocumentStatus != types.DocumentStatusDraft && !doc.IsVoided() {
		doc.DocumentStatus = document.DerivePaymentStatus(paid, doc.TotalCents)
	}

	if doc.DocumentStatus == types.DocumentStatusPaid {
		if doc.PaidAt == nil {
			now := time.Now().UTC()
			doc.PaidAt = &now
		}
	} else {
		doc.PaidAt = nil
	}

	if err := s.DocumentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}
