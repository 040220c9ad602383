package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/solobooks/solobooks/internal/domain/payment"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	c := *p
	if p.Method != nil {
		m := *p.Method
		c.Method = &m
	}
	c.Reference = copyStringPtr(p.Reference)
	return &c
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TenantID != types.GetTenantID(ctx) || p.Status == types.StatusDeleted {
		return nil, ierr.NewError("payment not found").
			WithHintf("Payment with id %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	filter := types.NewNoLimitPaymentFilter()
	filter.InvoiceID = invoiceID
	return s.List(ctx, filter)
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	f, ok := filter.(*types.PaymentFilter)
	if !ok {
		return true
	}
	if p.TenantID != types.GetTenantID(ctx) || p.Status != types.StatusPublished {
		return false
	}
	if f.InvoiceID != "" && p.InvoiceID != f.InvoiceID {
		return false
	}
	return true
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	payments, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, func(i, j *payment.Payment) bool {
		return i.PaymentDate.Before(j.PaymentDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(payments, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	}), nil
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, paymentFilterFn)
}
