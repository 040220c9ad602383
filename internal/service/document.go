package service

import (
	"context"
	"time"

	"github.com/solobooks/solobooks/internal/api/dto"
	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// DocumentService owns the document lifecycle: creation, draft edits,
// finalization with number assignment, send/accept/void transitions and
// archival. Quotes past their expiry date are expired lazily on read.
type DocumentService interface {
	CreateDocument(ctx context.Context, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	GetDocument(ctx context.Context, id string) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, filter *types.DocumentFilter) (*dto.ListDocumentsResponse, error)
	UpdateDocument(ctx context.Context, id string, req dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	FinalizeDocument(ctx context.Context, id string) (*dto.DocumentResponse, error)
	SendDocument(ctx context.Context, id string) (*dto.DocumentResponse, error)
	AcceptQuote(ctx context.Context, id string) (*dto.DocumentResponse, error)
	VoidInvoice(ctx context.Context, id string) (*dto.DocumentResponse, error)
	ArchiveDocument(ctx context.Context, id string) (*dto.DocumentResponse, error)
	ComputeTotals(ctx context.Context, req dto.ComputeTotalsRequest) (*dto.ComputeTotalsResponse, error)
}

type documentService struct {
	ServiceParams
}

func NewDocumentService(params ServiceParams) DocumentService {
	return &documentService{ServiceParams: params}
}

func (s *documentService) CreateDocument(ctx context.Context, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ClientRepo.Get(ctx, req.ClientID); err != nil {
		return nil, err
	}

	doc, err := req.ToDocument(ctx)
	if err != nil {
		return nil, err
	}

	if doc.ProjectID != nil {
		proj, err := s.ProjectRepo.Get(ctx, *doc.ProjectID)
		if err != nil {
			return nil, err
		}
		if proj.ClientID != doc.ClientID {
			return nil, ierr.NewError("project belongs to a different client").
				WithHint("Document client must match the project's client").
				WithReportableDetails(map[string]any{
					"project_id": proj.ID,
					"client_id":  doc.ClientID,
				}).
				Mark(ierr.ErrValidation)
		}
		// one-time PO snapshot; never re-synced afterwards
		if doc.PONumber == nil && proj.DefaultPONumber != nil {
			po := *proj.DefaultPONumber
			doc.PONumber = &po
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if err := s.DocumentRepo.CreateWithLineItems(ctx, doc); err != nil {
		return nil, err
	}

	s.Logger.Infow("created document",
		"document_id", doc.ID,
		"document_type", doc.DocumentType,
		"client_id", doc.ClientID,
	)

	return dto.NewDocumentResponse(doc), nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err = s.expireQuoteIfNeeded(ctx, doc)
	if err != nil {
		return nil, err
	}

	return dto.NewDocumentResponse(doc), nil
}

func (s *documentService) ListDocuments(ctx context.Context, filter *types.DocumentFilter) (*dto.ListDocumentsResponse, error) {
	if filter == nil {
		filter = &types.DocumentFilter{}
	}

	docs, err := s.DocumentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.DocumentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		doc, err = s.expireQuoteIfNeeded(ctx, doc)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.NewDocumentResponse(doc))
	}

	return &dto.ListDocumentsResponse{
		Items: items,
		Pagination: types.PaginationResponse{
			Total:  count,
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
		},
	}, nil
}

func (s *documentService) UpdateDocument(ctx context.Context, id string, req dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		doc, err := s.DocumentRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if doc.IsVoided() {
			return ierr.NewError("document is voided").
				WithHint("Voided documents cannot be edited").
				Mark(ierr.ErrInvalidOperation)
		}

		structural := req.LineItems != nil || req.PONumber != nil ||
			req.IssueDate != nil || req.DueDate != nil || req.ExpiryDate != nil
		if structural && doc.DocumentStatus != types.DocumentStatusDraft {
			return ierr.NewError("document is not a draft").
				WithHint("Line items, dates and PO number can only be changed on a draft").
				WithReportableDetails(map[string]any{
					"document_id": doc.ID,
					"status":      doc.DocumentStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if req.PONumber != nil {
			doc.PONumber = req.PONumber
		}
		if req.Notes != nil {
			doc.Notes = *req.Notes
		}
		if req.IssueDate != nil {
			doc.IssueDate = req.IssueDate
		}
		if req.DueDate != nil {
			if doc.IsQuote() {
				return ierr.NewError("due date on a quote").
					WithHint("Quotes carry an expiry date, not a due date").
					Mark(ierr.ErrValidation)
			}
			doc.DueDate = req.DueDate
		}
		if req.ExpiryDate != nil {
			if doc.IsInvoice() {
				return ierr.NewError("expiry date on an invoice").
					WithHint("Invoices carry a due date, not an expiry date").
					Mark(ierr.ErrValidation)
			}
			doc.ExpiryDate = req.ExpiryDate
		}
		if req.Metadata != nil {
			doc.Metadata = req.Metadata
		}

		if req.LineItems != nil {
			items := make([]*document.LineItem, 0, len(*req.LineItems))
			for i := range *req.LineItems {
				li, err := (*req.LineItems)[i].ToLineItem(ctx, i+1)
				if err != nil {
					return err
				}
				li.DocumentID = doc.ID
				items = append(items, li)
			}
			doc.LineItems = items
		}

		doc.ApplyTotals()
		if err := doc.Validate(); err != nil {
			return err
		}

		if req.LineItems != nil {
			err = s.DocumentRepo.UpdateWithLineItems(ctx, doc)
		} else {
			err = s.DocumentRepo.Update(ctx, doc)
		}
		if err != nil {
			return err
		}

		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto.NewDocumentResponse(updated), nil
}

// FinalizeDocument assigns the next document number for the tenant and type,
// defaults the issue and due dates, recomputes totals and stamps finalized_at.
// Numbers are never reused even if a later step fails; gaps are acceptable.
func (s *documentService) FinalizeDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var finalized *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			doc, err := s.DocumentRepo.Get(ctx, id)
			if err != nil {
				return err
			}

			if doc.IsFinalized() {
				return ierr.NewError("document already finalized").
					WithHint("A document can only be finalized once").
					WithReportableDetails(map[string]any{
						"document_id":     doc.ID,
						"document_number": doc.DocumentNumber,
					}).
					Mark(ierr.ErrInvalidOperation)
			}

			if doc.DocumentStatus != types.DocumentStatusDraft {
				return ierr.NewError("document is not a draft").
					WithHintf("Cannot finalize a document in status %s", doc.DocumentStatus).
					Mark(ierr.ErrInvalidOperation)
			}

			if len(doc.LineItems) == 0 {
				return ierr.NewError("document has no line items").
					WithHint("Add at least one line item before finalizing").
					Mark(ierr.ErrInvalidOperation)
			}

			seq, err := s.SequenceRepo.NextValue(ctx, doc.DocumentType, s.sequenceDefaults(doc.DocumentType))
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			number := seq.Number()
			doc.DocumentNumber = &number
			if doc.IssueDate == nil {
				doc.IssueDate = &now
			}
			if doc.IsInvoice() && doc.DueDate == nil {
				due := doc.IssueDate.AddDate(0, 0, s.Config.Billing.PaymentTermsDays)
				doc.DueDate = &due
			}
			doc.FinalizedAt = &now

			doc.ApplyTotals()
			if err := doc.Validate(); err != nil {
				return err
			}

			if err := s.DocumentRepo.Update(ctx, doc); err != nil {
				return err
			}

			finalized = doc
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("finalized document",
		"document_id", finalized.ID,
		"document_number", *finalized.DocumentNumber,
	)

	return dto.NewDocumentResponse(finalized), nil
}

func (s *documentService) sequenceDefaults(docType types.DocumentType) document.SequenceDefaults {
	prefix := s.Config.Billing.QuoteNumberPrefix
	if docType == types.DocumentTypeInvoice {
		prefix = s.Config.Billing.InvoiceNumberPrefix
	}
	return document.SequenceDefaults{
		Prefix:  prefix,
		Padding: s.Config.Billing.NumberPadding,
	}
}

// SendDocument stamps sent_at and moves a draft to sent. Sending an already
// sent document is a no-op.
func (s *documentService) SendDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var sent *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		doc, err := s.DocumentRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		doc, err = s.expireQuoteIfNeeded(ctx, doc)
		if err != nil {
			return err
		}

		if !doc.IsFinalized() {
			return ierr.NewError("document not finalized").
				WithHint("Finalize the document before sending it").
				Mark(ierr.ErrInvalidOperation)
		}

		if doc.SentAt != nil {
			sent = doc
			return nil
		}

		if doc.DocumentStatus == types.DocumentStatusDraft {
			next, err := document.Transition(doc.DocumentType, doc.DocumentStatus, document.LifecycleEventSend)
			if err != nil {
				return err
			}
			doc.DocumentStatus = next
		} else if doc.IsVoided() || doc.DocumentStatus == types.DocumentStatusExpired {
			return ierr.NewError("invalid lifecycle transition").
				WithHintf("A %s in status %s cannot be sent", doc.DocumentType, doc.DocumentStatus).
				Mark(ierr.ErrInvalidOperation)
		}

		now := time.Now().UTC()
		doc.SentAt = &now

		if err := s.DocumentRepo.Update(ctx, doc); err != nil {
			return err
		}

		sent = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto.NewDocumentResponse(sent), nil
}

func (s *documentService) AcceptQuote(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var accepted *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		doc, err := s.DocumentRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if !doc.IsQuote() {
			return ierr.NewError("document is not a quote").
				WithHint("Only quotes can be accepted").
				Mark(ierr.ErrInvalidOperation)
		}

		// an expired quote can no longer be accepted
		doc, err = s.expireQuoteIfNeeded(ctx, doc)
		if err != nil {
			return err
		}

		next, err := document.Transition(doc.DocumentType, doc.DocumentStatus, document.LifecycleEventAccept)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.DocumentStatus = next
		doc.AcceptedAt = &now

		if err := s.DocumentRepo.Update(ctx, doc); err != nil {
			return err
		}

		accepted = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto.NewDocumentResponse(accepted), nil
}

func (s *documentService) VoidInvoice(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var voided *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		doc, err := s.DocumentRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if !doc.IsInvoice() {
			return ierr.NewError("document is not an invoice").
				WithHint("Only invoices can be voided").
				Mark(ierr.ErrInvalidOperation)
		}

		if doc.IsVoided() {
			return ierr.NewError("invoice already voided").
				WithHint("Void is terminal").
				Mark(ierr.ErrInvalidOperation)
		}

		if doc.BalanceDueCents != 0 {
			return ierr.NewError("outstanding balance").
				WithHint("An invoice with an outstanding balance cannot be voided").
				WithReportableDetails(map[string]any{
					"invoice_id":        doc.ID,
					"balance_due_cents": doc.BalanceDueCents,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		next, err := document.Transition(doc.DocumentType, doc.DocumentStatus, document.LifecycleEventVoid)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.DocumentStatus = next
		doc.VoidedAt = &now

		if err := s.DocumentRepo.Update(ctx, doc); err != nil {
			return err
		}

		voided = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("voided invoice", "document_id", voided.ID)
	return dto.NewDocumentResponse(voided), nil
}

func (s *documentService) ArchiveDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var archived *document.Document
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		doc, err := s.DocumentRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if doc.ArchivedAt != nil {
			return ierr.NewError("document already archived").
				WithHint("The document is already archived").
				Mark(ierr.ErrInvalidOperation)
		}

		if doc.IsInvoice() &&
			doc.DocumentStatus != types.DocumentStatusPaid &&
			doc.DocumentStatus != types.DocumentStatusVoided {
			return ierr.NewError("cannot archive unpaid invoice").
				WithHint("Only paid or voided invoices can be archived").
				WithReportableDetails(map[string]any{
					"document_id": doc.ID,
					"status":      doc.DocumentStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		now := time.Now().UTC()
		doc.ArchivedAt = &now

		if err := s.DocumentRepo.Update(ctx, doc); err != nil {
			return err
		}

		archived = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto.NewDocumentResponse(archived), nil
}

// ComputeTotals computes line amounts and document totals for ad hoc input
// without persisting anything
func (s *documentService) ComputeTotals(ctx context.Context, req dto.ComputeTotalsRequest) (*dto.ComputeTotalsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &dto.ComputeTotalsResponse{
		LineAmounts: make([]document.LineItemAmounts, 0, len(req.LineItems)),
	}
	for i := range req.LineItems {
		li, err := req.LineItems[i].ToLineItem(ctx, i+1)
		if err != nil {
			return nil, err
		}
		resp.LineAmounts = append(resp.LineAmounts, document.LineItemAmounts{
			SubtotalCents: li.SubtotalCents,
			TaxCents:      li.TaxCents,
			TotalCents:    li.TotalCents,
		})
		resp.SubtotalCents += li.SubtotalCents
		resp.TaxTotalCents += li.TaxCents
		resp.TotalCents += li.TotalCents
	}

	return resp, nil
}

// expireQuoteIfNeeded applies lazy expiry: a quote read past its expiry date
// that was never accepted flips to expired before the caller sees it
func (s *documentService) expireQuoteIfNeeded(ctx context.Context, doc *document.Document) (*document.Document, error) {
	if !doc.IsExpirable(time.Now().UTC()) {
		return doc, nil
	}

	next, err := document.Transition(doc.DocumentType, doc.DocumentStatus, document.LifecycleEventExpire)
	if err != nil {
		return nil, err
	}
	doc.DocumentStatus = next

	if err := s.DocumentRepo.Update(ctx, doc); err != nil {
		// a concurrent writer got there first; the fresh row carries the
		// winning state
		if ierr.IsVersionConflict(err) {
			return s.DocumentRepo.Get(ctx, doc.ID)
		}
		return nil, err
	}

	s.Logger.Infow("expired quote", "document_id", doc.ID)
	return doc, nil
}
