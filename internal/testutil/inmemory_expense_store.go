package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/solobooks/solobooks/internal/domain/expense"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// InMemoryExpenseStore implements expense.Repository
type InMemoryExpenseStore struct {
	*InMemoryStore[*expense.Expense]
}

func NewInMemoryExpenseStore() *InMemoryExpenseStore {
	return &InMemoryExpenseStore{
		InMemoryStore: NewInMemoryStore[*expense.Expense](),
	}
}

func copyExpense(e *expense.Expense) *expense.Expense {
	if e == nil {
		return nil
	}
	c := *e
	c.ProjectID = copyStringPtr(e.ProjectID)
	c.LinkedInvoiceID = copyStringPtr(e.LinkedInvoiceID)
	return &c
}

func (s *InMemoryExpenseStore) Create(ctx context.Context, e *expense.Expense) error {
	if e == nil {
		return ierr.NewError("expense cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, e.ID, copyExpense(e))
}

func (s *InMemoryExpenseStore) Get(ctx context.Context, id string) (*expense.Expense, error) {
	e, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.TenantID != types.GetTenantID(ctx) || e.Status == types.StatusDeleted {
		return nil, ierr.NewError("expense not found").
			WithHintf("Expense with id %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyExpense(e), nil
}

func (s *InMemoryExpenseStore) Update(ctx context.Context, e *expense.Expense) error {
	if _, err := s.Get(ctx, e.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, e.ID, copyExpense(e))
}

func (s *InMemoryExpenseStore) ListByIDs(ctx context.Context, ids []string) ([]*expense.Expense, error) {
	var result []*expense.Expense
	for _, id := range ids {
		e, err := s.Get(ctx, id)
		if err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func expenseFilterFn(ctx context.Context, e *expense.Expense, filter interface{}) bool {
	f, ok := filter.(*types.ExpenseFilter)
	if !ok {
		return true
	}
	if e.TenantID != types.GetTenantID(ctx) || e.Status == types.StatusDeleted {
		return false
	}
	if f.BillingStatus != "" && e.BillingStatus != f.BillingStatus {
		return false
	}
	if f.Billable != nil && e.Billable != *f.Billable {
		return false
	}
	if f.LinkedInvoiceID != "" && (e.LinkedInvoiceID == nil || *e.LinkedInvoiceID != f.LinkedInvoiceID) {
		return false
	}
	return true
}

func (s *InMemoryExpenseStore) List(ctx context.Context, filter *types.ExpenseFilter) ([]*expense.Expense, error) {
	expenses, err := s.InMemoryStore.List(ctx, filter, expenseFilterFn, func(i, j *expense.Expense) bool {
		return i.ExpenseDate.Before(j.ExpenseDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(expenses, func(e *expense.Expense, _ int) *expense.Expense {
		return copyExpense(e)
	}), nil
}

func (s *InMemoryExpenseStore) Count(ctx context.Context, filter *types.ExpenseFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, expenseFilterFn)
}
