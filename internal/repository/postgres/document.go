package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

type documentRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewDocumentRepository(client postgres.IClient, logger *logger.Logger) document.Repository {
	return &documentRepository{
		client: client,
		logger: logger,
	}
}

const documentColumns = `id, tenant_id, document_type, document_number, document_status,
	client_id, project_id, po_number, notes, issue_date, due_date, expiry_date,
	subtotal_cents, tax_total_cents, total_cents, amount_paid_cents, balance_due_cents,
	sent_at, accepted_at, finalized_at, paid_at, voided_at, archived_at,
	metadata, version, status, created_at, updated_at, created_by, updated_by`

const lineItemColumns = `id, tenant_id, document_id, position, description, quantity,
	unit_price_cents, tax_rate_percent, subtotal_cents, tax_cents, total_cents,
	expense_id, status, created_at, updated_at, created_by, updated_by`

func (r *documentRepository) Create(ctx context.Context, doc *document.Document) error {
	query := fmt.Sprintf(`INSERT INTO documents (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		 $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`, documentColumns)

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		doc.ID, doc.TenantID, doc.DocumentType, doc.DocumentNumber, doc.DocumentStatus,
		doc.ClientID, doc.ProjectID, doc.PONumber, doc.Notes, doc.IssueDate, doc.DueDate, doc.ExpiryDate,
		doc.SubtotalCents, doc.TaxTotalCents, doc.TotalCents, doc.AmountPaidCents, doc.BalanceDueCents,
		doc.SentAt, doc.AcceptedAt, doc.FinalizedAt, doc.PaidAt, doc.VoidedAt, doc.ArchivedAt,
		doc.Metadata, doc.Version, doc.Status, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create document").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *documentRepository) CreateWithLineItems(ctx context.Context, doc *document.Document) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		if err := r.Create(ctx, doc); err != nil {
			return err
		}
		return r.insertLineItems(ctx, doc.ID, doc.LineItems)
	})
}

func (r *documentRepository) Get(ctx context.Context, id string) (*document.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, documentColumns)

	var doc document.Document
	err := r.client.Querier(ctx).GetContext(ctx, &doc, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("document not found").
				WithHintf("Document %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get document").
			Mark(ierr.ErrDatabase)
	}

	items, err := r.getLineItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.LineItems = items

	return &doc, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *document.Document) error {
	query := `UPDATE documents SET
		document_number = $1, document_status = $2, client_id = $3, project_id = $4,
		po_number = $5, notes = $6, issue_date = $7, due_date = $8, expiry_date = $9,
		subtotal_cents = $10, tax_total_cents = $11, total_cents = $12,
		amount_paid_cents = $13, balance_due_cents = $14,
		sent_at = $15, accepted_at = $16, finalized_at = $17, paid_at = $18,
		voided_at = $19, archived_at = $20, metadata = $21,
		version = version + 1, status = $22, updated_at = $23, updated_by = $24
		WHERE id = $25 AND tenant_id = $26 AND version = $27`

	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		doc.DocumentNumber, doc.DocumentStatus, doc.ClientID, doc.ProjectID,
		doc.PONumber, doc.Notes, doc.IssueDate, doc.DueDate, doc.ExpiryDate,
		doc.SubtotalCents, doc.TaxTotalCents, doc.TotalCents,
		doc.AmountPaidCents, doc.BalanceDueCents,
		doc.SentAt, doc.AcceptedAt, doc.FinalizedAt, doc.PaidAt,
		doc.VoidedAt, doc.ArchivedAt, doc.Metadata,
		doc.Status, doc.UpdatedAt, doc.UpdatedBy,
		doc.ID, types.GetTenantID(ctx), doc.Version,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update document").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update document").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		// distinguish a stale version from a missing row
		if _, gerr := r.Get(ctx, doc.ID); gerr != nil {
			return gerr
		}
		return ierr.NewError("document was modified concurrently").
			WithHint("Please retry the operation").
			WithReportableDetails(map[string]any{
				"document_id": doc.ID,
				"version":     doc.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	doc.Version++
	return nil
}

func (r *documentRepository) UpdateWithLineItems(ctx context.Context, doc *document.Document) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		if err := r.Update(ctx, doc); err != nil {
			return err
		}

		query := `DELETE FROM line_items WHERE document_id = $1 AND tenant_id = $2`
		if _, err := r.client.Querier(ctx).ExecContext(ctx, query, doc.ID, types.GetTenantID(ctx)); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to replace line items").
				Mark(ierr.ErrDatabase)
		}

		return r.insertLineItems(ctx, doc.ID, doc.LineItems)
	})
}

func (r *documentRepository) List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC`,
		documentColumns, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	docs := make([]*document.Document, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list documents").
			Mark(ierr.ErrDatabase)
	}

	for _, doc := range docs {
		items, err := r.getLineItems(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		doc.LineItems = items
	}

	return docs, nil
}

func (r *documentRepository) Count(ctx context.Context, filter *types.DocumentFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	var count int
	query := "SELECT COUNT(*) FROM documents WHERE " + where
	if err := r.client.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count documents").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *documentRepository) buildWhere(ctx context.Context, filter *types.DocumentFilter) (string, []interface{}) {
	conds := []string{"tenant_id = ?", "status != ?"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.DocumentType != "" {
		conds = append(conds, "document_type = ?")
		args = append(args, filter.DocumentType)
	}
	if len(filter.DocumentStatus) > 0 {
		placeholders := make([]string, len(filter.DocumentStatus))
		for i, s := range filter.DocumentStatus {
			placeholders[i] = "?"
			args = append(args, s)
		}
		conds = append(conds, fmt.Sprintf("document_status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !filter.IncludeArchived {
		conds = append(conds, "archived_at IS NULL")
	}

	where := strings.Join(conds, " AND ")
	// rebind ? placeholders to postgres $n
	for i := 1; strings.Contains(where, "?"); i++ {
		where = strings.Replace(where, "?", fmt.Sprintf("$%d", i), 1)
	}
	return where, args
}

func (r *documentRepository) getLineItems(ctx context.Context, documentID string) ([]*document.LineItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM line_items
		WHERE document_id = $1 AND tenant_id = $2 ORDER BY position ASC`, lineItemColumns)

	items := make([]*document.LineItem, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &items, query, documentID, types.GetTenantID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load line items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

func (r *documentRepository) insertLineItems(ctx context.Context, documentID string, items []*document.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO line_items (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`, lineItemColumns)

	for _, item := range items {
		item.DocumentID = documentID
		_, err := r.client.Querier(ctx).ExecContext(ctx, query,
			item.ID, item.TenantID, item.DocumentID, item.Position, item.Description, item.Quantity,
			item.UnitPriceCents, item.TaxRatePercent, item.SubtotalCents, item.TaxCents, item.TotalCents,
			item.ExpenseID, item.Status, item.CreatedAt, item.UpdatedAt, item.CreatedBy, item.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create line item").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}
