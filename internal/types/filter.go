package types

import "github.com/samber/lo"

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 1000
)

// BaseFilter is implemented by all list filters so stores can apply
// pagination uniformly
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	IsUnlimited() bool
}

// QueryFilter carries the common pagination fields
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit"`
	Offset *int `json:"offset,omitempty" form:"offset"`
	// NoLimit disables pagination for internal full scans
	NoLimit bool `json:"-" form:"-"`
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FilterDefaultLimit
	}
	return lo.Clamp(*f.Limit, 1, FilterMaxLimit)
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	if *f.Offset < 0 {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) IsUnlimited() bool {
	return f != nil && f.NoLimit
}

// DocumentFilter filters document lists
type DocumentFilter struct {
	QueryFilter
	ClientID        string           `json:"client_id,omitempty" form:"client_id"`
	ProjectID       string           `json:"project_id,omitempty" form:"project_id"`
	DocumentType    DocumentType     `json:"document_type,omitempty" form:"document_type"`
	DocumentStatus  []DocumentStatus `json:"document_status,omitempty" form:"document_status"`
	IncludeArchived bool             `json:"include_archived,omitempty" form:"include_archived"`
}

// NewNoLimitDocumentFilter returns a filter that scans every row; for
// engine-internal lookups only
func NewNoLimitDocumentFilter() *DocumentFilter {
	return &DocumentFilter{QueryFilter: QueryFilter{NoLimit: true}}
}

// PaymentFilter filters payment lists
type PaymentFilter struct {
	QueryFilter
	InvoiceID string `json:"invoice_id,omitempty" form:"invoice_id"`
}

func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: QueryFilter{NoLimit: true}}
}

// ExpenseFilter filters expense lists
type ExpenseFilter struct {
	QueryFilter
	BillingStatus   ExpenseBillingStatus `json:"billing_status,omitempty" form:"billing_status"`
	Billable        *bool                `json:"billable,omitempty" form:"billable"`
	LinkedInvoiceID string               `json:"linked_invoice_id,omitempty" form:"linked_invoice_id"`
}

func NewNoLimitExpenseFilter() *ExpenseFilter {
	return &ExpenseFilter{QueryFilter: QueryFilter{NoLimit: true}}
}
