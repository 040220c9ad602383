package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
	"github.com/solobooks/solobooks/internal/validator"
)

// LineItemRequest describes one line of a document being created or edited
type LineItemRequest struct {
	Description    string           `json:"description" validate:"required"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPriceCents int64            `json:"unit_price_cents" validate:"gte=0"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty"`
}

func (r *LineItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Quantity.IsNegative() {
		return ierr.NewError("negative quantity").
			WithHint("Quantity must be non negative").
			Mark(ierr.ErrValidation)
	}
	if r.TaxRatePercent != nil {
		if r.TaxRatePercent.IsNegative() || r.TaxRatePercent.GreaterThan(decimal.NewFromInt(100)) {
			return ierr.NewError("invalid tax rate").
				WithHint("Tax rate must be between 0 and 100").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ToLineItem converts the request into a domain line item with computed
// amounts; position is 1-based in request order
func (r *LineItemRequest) ToLineItem(ctx context.Context, position int) (*document.LineItem, error) {
	li := &document.LineItem{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
		Position:       position,
		Description:    r.Description,
		Quantity:       r.Quantity,
		UnitPriceCents: r.UnitPriceCents,
		TaxRatePercent: r.TaxRatePercent,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := li.ApplyAmounts(); err != nil {
		return nil, err
	}
	return li, nil
}

// CreateDocumentRequest creates a draft quote or invoice
type CreateDocumentRequest struct {
	DocumentType types.DocumentType `json:"document_type" validate:"required"`
	ClientID     string             `json:"client_id" validate:"required"`
	ProjectID    *string            `json:"project_id,omitempty"`
	PONumber     *string            `json:"po_number,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	IssueDate    *time.Time         `json:"issue_date,omitempty"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	ExpiryDate   *time.Time         `json:"expiry_date,omitempty"`
	LineItems    []LineItemRequest  `json:"line_items,omitempty"`
	Metadata     types.Metadata     `json:"metadata,omitempty"`
}

func (r *CreateDocumentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.DocumentType.Validate(); err != nil {
		return err
	}
	if r.DocumentType == types.DocumentTypeQuote && r.DueDate != nil {
		return ierr.NewError("due date on a quote").
			WithHint("Quotes carry an expiry date, not a due date").
			Mark(ierr.ErrValidation)
	}
	if r.DocumentType == types.DocumentTypeInvoice && r.ExpiryDate != nil {
		return ierr.NewError("expiry date on an invoice").
			WithHint("Invoices carry a due date, not an expiry date").
			Mark(ierr.ErrValidation)
	}
	for i := range r.LineItems {
		if err := r.LineItems[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToDocument converts the request into a draft domain document with computed
// line amounts and materialized totals
func (r *CreateDocumentRequest) ToDocument(ctx context.Context) (*document.Document, error) {
	doc := &document.Document{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		DocumentType:   r.DocumentType,
		DocumentStatus: types.DocumentStatusDraft,
		ClientID:       r.ClientID,
		ProjectID:      r.ProjectID,
		PONumber:       r.PONumber,
		Notes:          r.Notes,
		IssueDate:      r.IssueDate,
		DueDate:        r.DueDate,
		ExpiryDate:     r.ExpiryDate,
		Metadata:       r.Metadata,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	for i := range r.LineItems {
		li, err := r.LineItems[i].ToLineItem(ctx, i+1)
		if err != nil {
			return nil, err
		}
		doc.LineItems = append(doc.LineItems, li)
	}

	doc.ApplyTotals()
	return doc, nil
}

// UpdateDocumentRequest edits a draft document's header and optionally
// replaces its line items
type UpdateDocumentRequest struct {
	PONumber   *string            `json:"po_number,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	IssueDate  *time.Time         `json:"issue_date,omitempty"`
	DueDate    *time.Time         `json:"due_date,omitempty"`
	ExpiryDate *time.Time         `json:"expiry_date,omitempty"`
	LineItems  *[]LineItemRequest `json:"line_items,omitempty"`
	Metadata   types.Metadata     `json:"metadata,omitempty"`
}

func (r *UpdateDocumentRequest) Validate() error {
	if r.LineItems != nil {
		for i := range *r.LineItems {
			if err := (*r.LineItems)[i].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// DocumentResponse is the engine's view of a document returned to callers
type DocumentResponse struct {
	*document.Document
}

func NewDocumentResponse(doc *document.Document) *DocumentResponse {
	return &DocumentResponse{Document: doc}
}

// ListDocumentsResponse is a paginated document list
type ListDocumentsResponse struct {
	Items      []*DocumentResponse      `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// ComputeTotalsRequest asks for document totals over ad hoc line items
// without persisting anything
type ComputeTotalsRequest struct {
	LineItems []LineItemRequest `json:"line_items"`
}

func (r *ComputeTotalsRequest) Validate() error {
	for i := range r.LineItems {
		if err := r.LineItems[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ComputeTotalsResponse carries the aggregate along with each line's derived
// amounts in request order
type ComputeTotalsResponse struct {
	SubtotalCents int64                      `json:"subtotal_cents"`
	TaxTotalCents int64                      `json:"tax_total_cents"`
	TotalCents    int64                      `json:"total_cents"`
	LineAmounts   []document.LineItemAmounts `json:"line_amounts"`
}
