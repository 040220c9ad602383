package payment

import (
	"context"

	"github.com/solobooks/solobooks/internal/types"
)

// Repository provides tenant-scoped access to the payment ledger
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// Update is used only to soft delete a ledger entry; amounts are never
	// edited in place
	Update(ctx context.Context, p *Payment) error
	// ListByInvoice returns the active (published) ledger entries of an
	// invoice in payment date order
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
}
