package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/solobooks/solobooks/internal/domain/client"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

type clientRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewClientRepository(pg postgres.IClient, logger *logger.Logger) client.Repository {
	return &clientRepository{
		client: pg,
		logger: logger,
	}
}

const clientColumns = `id, tenant_id, name, email, status, created_at, updated_at, created_by, updated_by`

func (r *clientRepository) Create(ctx context.Context, c *client.Client) error {
	query := fmt.Sprintf(`INSERT INTO clients (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9)`, clientColumns)

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		c.ID, c.TenantID, c.Name, c.Email, c.Status, c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create client").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, clientColumns)

	var c client.Client
	err := r.client.Querier(ctx).GetContext(ctx, &c, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("client not found").
				WithHintf("Client %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get client").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *clientRepository) Update(ctx context.Context, c *client.Client) error {
	query := `UPDATE clients SET name = $1, email = $2, status = $3, updated_at = $4, updated_by = $5
		WHERE id = $6 AND tenant_id = $7`

	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		c.Name, c.Email, c.Status, c.UpdatedAt, c.UpdatedBy, c.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update client").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update client").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("client not found").
			WithHintf("Client %s does not exist", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
