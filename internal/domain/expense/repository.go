package expense

import (
	"context"

	"github.com/solobooks/solobooks/internal/types"
)

// Repository provides tenant-scoped access to expenses
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	Get(ctx context.Context, id string) (*Expense, error)
	Update(ctx context.Context, e *Expense) error
	// ListByIDs returns the expenses with the given ids; absent or
	// foreign-tenant ids are simply missing from the result
	ListByIDs(ctx context.Context, ids []string) ([]*Expense, error)
	List(ctx context.Context, filter *types.ExpenseFilter) ([]*Expense, error)
	Count(ctx context.Context, filter *types.ExpenseFilter) (int, error)
}
