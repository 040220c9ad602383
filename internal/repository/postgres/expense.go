package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/solobooks/solobooks/internal/domain/expense"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

type expenseRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewExpenseRepository(client postgres.IClient, logger *logger.Logger) expense.Repository {
	return &expenseRepository{
		client: client,
		logger: logger,
	}
}

const expenseColumns = `id, tenant_id, description, category, vendor, expense_date,
	total_amount_cents, project_id, billable, billing_status, linked_invoice_id,
	status, created_at, updated_at, created_by, updated_by`

func (r *expenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := fmt.Sprintf(`INSERT INTO expenses (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`, expenseColumns)

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		e.ID, e.TenantID, e.Description, e.Category, e.Vendor, e.ExpenseDate,
		e.TotalAmountCents, e.ProjectID, e.Billable, e.BillingStatus, e.LinkedInvoiceID,
		e.Status, e.CreatedAt, e.UpdatedAt, e.CreatedBy, e.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create expense").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *expenseRepository) Get(ctx context.Context, id string) (*expense.Expense, error) {
	query := fmt.Sprintf(`SELECT %s FROM expenses
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, expenseColumns)

	var e expense.Expense
	err := r.client.Querier(ctx).GetContext(ctx, &e, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("expense not found").
				WithHintf("Expense %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get expense").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *expenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	query := `UPDATE expenses SET
		description = $1, category = $2, vendor = $3, expense_date = $4,
		total_amount_cents = $5, project_id = $6, billable = $7,
		billing_status = $8, linked_invoice_id = $9,
		status = $10, updated_at = $11, updated_by = $12
		WHERE id = $13 AND tenant_id = $14`

	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		e.Description, e.Category, e.Vendor, e.ExpenseDate,
		e.TotalAmountCents, e.ProjectID, e.Billable,
		e.BillingStatus, e.LinkedInvoiceID,
		e.Status, e.UpdatedAt, e.UpdatedBy,
		e.ID, types.GetTenantID(ctx),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update expense").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update expense").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("expense not found").
			WithHintf("Expense %s does not exist", e.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *expenseRepository) ListByIDs(ctx context.Context, ids []string) ([]*expense.Expense, error) {
	if len(ids) == 0 {
		return []*expense.Expense{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM expenses
		WHERE id = ANY($1) AND tenant_id = $2 AND status != $3`, expenseColumns)

	expenses := make([]*expense.Expense, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &expenses, query,
		pq.Array(ids), types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expenses").
			Mark(ierr.ErrDatabase)
	}
	return expenses, nil
}

func (r *expenseRepository) List(ctx context.Context, filter *types.ExpenseFilter) ([]*expense.Expense, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s ORDER BY expense_date DESC`,
		expenseColumns, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	expenses := make([]*expense.Expense, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expenses").
			Mark(ierr.ErrDatabase)
	}
	return expenses, nil
}

func (r *expenseRepository) Count(ctx context.Context, filter *types.ExpenseFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	var count int
	query := "SELECT COUNT(*) FROM expenses WHERE " + where
	if err := r.client.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count expenses").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *expenseRepository) buildWhere(ctx context.Context, filter *types.ExpenseFilter) (string, []interface{}) {
	conds := []string{"tenant_id = ?", "status != ?"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter.BillingStatus != "" {
		conds = append(conds, "billing_status = ?")
		args = append(args, filter.BillingStatus)
	}
	if filter.Billable != nil {
		conds = append(conds, "billable = ?")
		args = append(args, *filter.Billable)
	}
	if filter.LinkedInvoiceID != "" {
		conds = append(conds, "linked_invoice_id = ?")
		args = append(args, filter.LinkedInvoiceID)
	}

	where := strings.Join(conds, " AND ")
	for i := 1; strings.Contains(where, "?"); i++ {
		where = strings.Replace(where, "?", fmt.Sprintf("$%d", i), 1)
	}
	return where, args
}
