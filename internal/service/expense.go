package service

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/solobooks/solobooks/internal/api/dto"
	"github.com/solobooks/solobooks/internal/domain/document"
	"github.com/solobooks/solobooks/internal/domain/expense"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// ExpenseService tracks expenses and links billable ones into draft invoices
// as quantity-one line items. Linking a batch commits the eligible subset
// atomically and reports the rest as per-item conflicts.
type ExpenseService interface {
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	GetExpense(ctx context.Context, id string) (*dto.ExpenseResponse, error)
	ListExpenses(ctx context.Context, filter *types.ExpenseFilter) (*dto.ListExpensesResponse, error)
	// MarkExpenseUserPaid marks an unbilled expense as settled by the user
	// directly, outside any invoice
	MarkExpenseUserPaid(ctx context.Context, id string) (*dto.ExpenseResponse, error)
	AddExpensesToInvoice(ctx context.Context, req dto.AddExpensesToInvoiceRequest) (*dto.AddExpensesToInvoiceResponse, error)
	// UnlinkExpense removes a billed expense's line from its draft invoice
	// and returns the expense to unbilled
	UnlinkExpense(ctx context.Context, id string) (*dto.ExpenseResponse, error)
}

type expenseService struct {
	ServiceParams
}

func NewExpenseService(params ServiceParams) ExpenseService {
	return &expenseService{ServiceParams: params}
}

func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e := req.ToExpense(ctx)
	if e.ProjectID != nil {
		if _, err := s.ProjectRepo.Get(ctx, *e.ProjectID); err != nil {
			return nil, err
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.ExpenseRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	return dto.NewExpenseResponse(e), nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (*dto.ExpenseResponse, error) {
	e, err := s.ExpenseRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewExpenseResponse(e), nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter *types.ExpenseFilter) (*dto.ListExpensesResponse, error) {
	if filter == nil {
		filter = &types.ExpenseFilter{}
	}

	expenses, err := s.ExpenseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.ExpenseRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, dto.NewExpenseResponse(e))
	}

	return &dto.ListExpensesResponse{
		Items: items,
		Pagination: types.PaginationResponse{
			Total:  count,
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
		},
	}, nil
}

func (s *expenseService) MarkExpenseUserPaid(ctx context.Context, id string) (*dto.ExpenseResponse, error) {
	e, err := s.ExpenseRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.BillingStatus == types.ExpenseBillingStatusBilled {
		return nil, ierr.NewError("expense is billed").
			WithHint("Unlink the expense from its invoice before marking it user paid").
			WithReportableDetails(map[string]any{
				"expense_id":        e.ID,
				"linked_invoice_id": e.LinkedInvoiceID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	e.BillingStatus = types.ExpenseBillingStatusUserPaid
	if err := s.ExpenseRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	return dto.NewExpenseResponse(e), nil
}

// AddExpensesToInvoice appends one quantity-one line per eligible expense to
// a draft invoice and marks those expenses billed. Ineligible expenses are
// reported as conflicts; the eligible subset commits in one transaction.
func (s *expenseService) AddExpensesToInvoice(ctx context.Context, req dto.AddExpensesToInvoiceRequest) (*dto.AddExpensesToInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.AddExpensesToInvoiceResponse
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			doc, err := s.DocumentRepo.Get(ctx, req.InvoiceID)
			if err != nil {
				return err
			}

			if !doc.IsInvoice() {
				return ierr.NewError("document is not an invoice").
					WithHint("Expenses can only be billed to invoices").
					Mark(ierr.ErrValidation)
			}

			if doc.DocumentStatus != types.DocumentStatusDraft {
				return ierr.NewError("invoice is not a draft").
					WithHintf("Cannot add expenses to an invoice in status %s", doc.DocumentStatus).
					Mark(ierr.ErrInvalidOperation)
			}

			found, err := s.ExpenseRepo.ListByIDs(ctx, req.ExpenseIDs)
			if err != nil {
				return err
			}
			byID := lo.KeyBy(found, func(e *expense.Expense) string { return e.ID })

			var (
				eligible  []*expense.Expense
				conflicts []dto.ExpenseConflict
				seen      = make(map[string]struct{}, len(req.ExpenseIDs))
			)
			for _, id := range req.ExpenseIDs {
				// a repeated id is an attempt to bill the same expense twice
				if _, dup := seen[id]; dup {
					conflicts = append(conflicts, dto.ExpenseConflict{ExpenseID: id, Reason: "expense is already billed"})
					continue
				}
				seen[id] = struct{}{}

				e, ok := byID[id]
				if !ok {
					conflicts = append(conflicts, dto.ExpenseConflict{ExpenseID: id, Reason: "expense not found"})
					continue
				}
				switch {
				case !e.Billable:
					conflicts = append(conflicts, dto.ExpenseConflict{ExpenseID: id, Reason: "expense is not billable"})
				case e.BillingStatus == types.ExpenseBillingStatusBilled:
					conflicts = append(conflicts, dto.ExpenseConflict{ExpenseID: id, Reason: "expense is already billed"})
				case e.BillingStatus == types.ExpenseBillingStatusUserPaid:
					conflicts = append(conflicts, dto.ExpenseConflict{ExpenseID: id, Reason: "expense was paid by the user"})
				default:
					eligible = append(eligible, e)
				}
			}

			position := len(doc.LineItems)
			for _, e := range eligible {
				position++
				li := &document.LineItem{
					ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
					DocumentID:     doc.ID,
					Position:       position,
					Description:    e.Description,
					Quantity:       decimal.NewFromInt(1),
					UnitPriceCents: e.TotalAmountCents,
					ExpenseID:      &e.ID,
					BaseModel:      types.GetDefaultBaseModel(ctx),
				}
				if err := li.ApplyAmounts(); err != nil {
					return err
				}
				doc.LineItems = append(doc.LineItems, li)
			}

			if len(eligible) > 0 {
				doc.ApplyTotals()
				if err := doc.Validate(); err != nil {
					return err
				}
				if err := s.DocumentRepo.UpdateWithLineItems(ctx, doc); err != nil {
					return err
				}

				for _, e := range eligible {
					e.BillingStatus = types.ExpenseBillingStatusBilled
					e.LinkedInvoiceID = &doc.ID
					if err := s.ExpenseRepo.Update(ctx, e); err != nil {
						return err
					}
				}
			}

			resp = &dto.AddExpensesToInvoiceResponse{
				Invoice: dto.NewDocumentResponse(doc),
				LinkedExpenseIDs: lo.Map(eligible, func(e *expense.Expense, _ int) string {
					return e.ID
				}),
				Conflicts: conflicts,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("linked expenses to invoice",
		"invoice_id", req.InvoiceID,
		"linked", len(resp.LinkedExpenseIDs),
		"conflicts", len(resp.Conflicts),
	)

	return resp, nil
}

func (s *expenseService) UnlinkExpense(ctx context.Context, id string) (*dto.ExpenseResponse, error) {
	var unlinked *expense.Expense
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			e, err := s.ExpenseRepo.Get(ctx, id)
			if err != nil {
				return err
			}

			if e.BillingStatus != types.ExpenseBillingStatusBilled || e.LinkedInvoiceID == nil {
				return ierr.NewError("expense is not billed").
					WithHint("Only billed expenses can be unlinked").
					Mark(ierr.ErrInvalidOperation)
			}

			doc, err := s.DocumentRepo.Get(ctx, *e.LinkedInvoiceID)
			if err != nil {
				return err
			}

			if doc.DocumentStatus != types.DocumentStatusDraft {
				return ierr.NewError("invoice is not a draft").
					WithHintf("Cannot unlink an expense from an invoice in status %s", doc.DocumentStatus).
					Mark(ierr.ErrInvalidOperation)
			}

			kept := make([]*document.LineItem, 0, len(doc.LineItems))
			for _, li := range doc.LineItems {
				if li.ExpenseID != nil && *li.ExpenseID == e.ID {
					continue
				}
				li.Position = len(kept) + 1
				kept = append(kept, li)
			}
			doc.LineItems = kept

			doc.ApplyTotals()
			if err := doc.Validate(); err != nil {
				return err
			}
			if err := s.DocumentRepo.UpdateWithLineItems(ctx, doc); err != nil {
				return err
			}

			e.BillingStatus = types.ExpenseBillingStatusUnbilled
			e.LinkedInvoiceID = nil
			if err := s.ExpenseRepo.Update(ctx, e); err != nil {
				return err
			}

			unlinked = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return dto.NewExpenseResponse(unlinked), nil
}
