package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/solobooks/solobooks/internal/domain/project"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

type projectRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewProjectRepository(pg postgres.IClient, logger *logger.Logger) project.Repository {
	return &projectRepository{
		client: pg,
		logger: logger,
	}
}

const projectColumns = `id, tenant_id, client_id, name, default_po_number,
	status, created_at, updated_at, created_by, updated_by`

func (r *projectRepository) Create(ctx context.Context, p *project.Project) error {
	query := fmt.Sprintf(`INSERT INTO projects (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, projectColumns)

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		p.ID, p.TenantID, p.ClientID, p.Name, p.DefaultPONumber,
		p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create project").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects
		WHERE id = $1 AND tenant_id = $2 AND status != $3`, projectColumns)

	var p project.Project
	err := r.client.Querier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("project not found").
				WithHintf("Project %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get project").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *projectRepository) Update(ctx context.Context, p *project.Project) error {
	query := `UPDATE projects SET
		client_id = $1, name = $2, default_po_number = $3,
		status = $4, updated_at = $5, updated_by = $6
		WHERE id = $7 AND tenant_id = $8`

	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		p.ClientID, p.Name, p.DefaultPONumber,
		p.Status, p.UpdatedAt, p.UpdatedBy, p.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update project").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update project").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("project not found").
			WithHintf("Project %s does not exist", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
