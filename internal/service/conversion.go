package service

import (
	"context"

	"github.com/solobooks/solobooks/internal/api/dto"
	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// ConversionService turns an accepted quote into a fresh draft invoice. The
// quote is left untouched; the invoice starts its own lifecycle with copied
// line snapshots.
type ConversionService interface {
	ConvertQuoteToInvoice(ctx context.Context, quoteID string) (*dto.DocumentResponse, error)
}

type conversionService struct {
	ServiceParams
}

func NewConversionService(params ServiceParams) ConversionService {
	return &conversionService{ServiceParams: params}
}

func (s *conversionService) ConvertQuoteToInvoice(ctx context.Context, quoteID string) (*dto.DocumentResponse, error) {
	quote, err := s.DocumentRepo.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if !quote.IsQuote() {
		return nil, ierr.NewError("document is not a quote").
			WithHint("Only quotes can be converted to invoices").
			WithReportableDetails(map[string]any{
				"document_id":   quote.ID,
				"document_type": quote.DocumentType,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if quote.DocumentStatus != types.DocumentStatusAccepted {
		return nil, ierr.NewError("quote is not accepted").
			WithHintf("Cannot convert a quote in status %s", quote.DocumentStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	invoice := &document.Document{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		DocumentType:   types.DocumentTypeInvoice,
		DocumentStatus: types.DocumentStatusDraft,
		ClientID:       quote.ClientID,
		ProjectID:      quote.ProjectID,
		PONumber:       quote.PONumber,
		Notes:          quote.Notes,
		Metadata:       quote.Metadata,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	// copy the line snapshots verbatim: same position, quantity, price and
	// tax rate, and the already rounded amounts
	for _, li := range quote.LineItems {
		invoice.LineItems = append(invoice.LineItems, &document.LineItem{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
			DocumentID:     invoice.ID,
			Position:       li.Position,
			Description:    li.Description,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
			TaxRatePercent: li.TaxRatePercent,
			SubtotalCents:  li.SubtotalCents,
			TaxCents:       li.TaxCents,
			TotalCents:     li.TotalCents,
			ExpenseID:      li.ExpenseID,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		})
	}

	invoice.ApplyTotals()
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := s.DocumentRepo.CreateWithLineItems(ctx, invoice); err != nil {
		return nil, err
	}

	s.Logger.Infow("converted quote to invoice",
		"quote_id", quote.ID,
		"invoice_id", invoice.ID,
	)

	return dto.NewDocumentResponse(invoice), nil
}
