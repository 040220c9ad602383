package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/solobooks/solobooks/internal/domain/payment"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

type paymentRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewPaymentRepository(client postgres.IClient, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		client: client,
		logger: logger,
	}
}

const paymentColumns = `id, tenant_id, invoice_id, payment_date, amount_cents, method,
	reference, notes, status, created_at, updated_at, created_by, updated_by`

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := fmt.Sprintf(`INSERT INTO payments (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, paymentColumns)

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		p.ID, p.TenantID, p.InvoiceID, p.PaymentDate, p.AmountCents, p.Method,
		p.Reference, p.Notes, p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, paymentColumns)

	var p payment.Payment
	err := r.client.Querier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("payment not found").
				WithHintf("Payment %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `UPDATE payments SET status = $1, notes = $2, updated_at = $3, updated_by = $4
		WHERE id = $5 AND tenant_id = $6`

	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		p.Status, p.Notes, p.UpdatedAt, p.UpdatedBy, p.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("payment not found").
			WithHintf("Payment %s does not exist", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE invoice_id = $1 AND tenant_id = $2 AND status = $3
		ORDER BY payment_date ASC, created_at ASC`, paymentColumns)

	payments := make([]*payment.Payment, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &payments, query,
		invoiceID, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY payment_date DESC`,
		paymentColumns, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	payments := make([]*payment.Payment, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	var count int
	query := "SELECT COUNT(*) FROM payments WHERE " + where
	if err := r.client.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count payments").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *paymentRepository) buildWhere(ctx context.Context, filter *types.PaymentFilter) (string, []interface{}) {
	conds := []string{"tenant_id = ?", "status != ?"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter.InvoiceID != "" {
		conds = append(conds, "invoice_id = ?")
		args = append(args, filter.InvoiceID)
	}

	where := strings.Join(conds, " AND ")
	for i := 1; strings.Contains(where, "?"); i++ {
		where = strings.Replace(where, "?", fmt.Sprintf("$%d", i), 1)
	}
	return where, args
}
