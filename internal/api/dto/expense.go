package dto

import (
	"context"
	"time"

	"github.com/solobooks/solobooks/internal/domain/expense"
	"github.com/solobooks/solobooks/internal/types"
	"github.com/solobooks/solobooks/internal/validator"
)

// CreateExpenseRequest records a cost the consultant incurred
type CreateExpenseRequest struct {
	Description      string    `json:"description" validate:"required"`
	Category         string    `json:"category,omitempty"`
	Vendor           string    `json:"vendor,omitempty"`
	ExpenseDate      time.Time `json:"expense_date" validate:"required"`
	TotalAmountCents int64     `json:"total_amount_cents" validate:"gt=0"`
	ProjectID        *string   `json:"project_id,omitempty"`
	Billable         bool      `json:"billable"`
}

func (r *CreateExpenseRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateExpenseRequest) ToExpense(ctx context.Context) *expense.Expense {
	return &expense.Expense{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EXPENSE),
		Description:      r.Description,
		Category:         r.Category,
		Vendor:           r.Vendor,
		ExpenseDate:      r.ExpenseDate,
		TotalAmountCents: r.TotalAmountCents,
		ProjectID:        r.ProjectID,
		Billable:         r.Billable,
		BillingStatus:    types.ExpenseBillingStatusUnbilled,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

// ExpenseResponse is the engine's view of an expense
type ExpenseResponse struct {
	*expense.Expense
}

func NewExpenseResponse(e *expense.Expense) *ExpenseResponse {
	return &ExpenseResponse{Expense: e}
}

// ListExpensesResponse is a paginated expense list
type ListExpensesResponse struct {
	Items      []*ExpenseResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// AddExpensesToInvoiceRequest links billable expenses into a draft invoice
type AddExpensesToInvoiceRequest struct {
	InvoiceID  string   `json:"invoice_id" validate:"required"`
	ExpenseIDs []string `json:"expense_ids" validate:"required,min=1"`
}

func (r *AddExpensesToInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ExpenseConflict reports why one expense in a batch could not be linked
type ExpenseConflict struct {
	ExpenseID string `json:"expense_id"`
	Reason    string `json:"reason"`
}

// AddExpensesToInvoiceResponse returns the updated invoice, the expenses that
// were linked and the per-item conflicts for those that were not
type AddExpensesToInvoiceResponse struct {
	Invoice          *DocumentResponse `json:"invoice"`
	LinkedExpenseIDs []string          `json:"linked_expense_ids"`
	Conflicts        []ExpenseConflict `json:"conflicts,omitempty"`
}
