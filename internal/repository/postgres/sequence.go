package postgres

import (
	"context"
	"database/sql"

	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

type sequenceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewNumberSequenceRepository(client postgres.IClient, logger *logger.Logger) document.NumberSequenceRepository {
	return &sequenceRepository{
		client: client,
		logger: logger,
	}
}

// NextValue increments and reads the sequence in one statement. The upsert
// serializes concurrent finalize calls for the same (tenant, type) on the row
// lock, so no two callers ever observe the same value.
func (r *sequenceRepository) NextValue(ctx context.Context, docType types.DocumentType, defaults document.SequenceDefaults) (*document.NumberSequence, error) {
	tenantID := types.GetTenantID(ctx)

	query := `
		INSERT INTO number_sequences (id, tenant_id, document_type, prefix, padding, current_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (tenant_id, document_type) DO UPDATE
		SET current_value = number_sequences.current_value + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, tenant_id, document_type, prefix, padding, current_value, created_at, updated_at`

	var seq document.NumberSequence
	err := r.client.Querier(ctx).GetContext(ctx, &seq, query,
		types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NUMBER_SEQUENCE),
		tenantID, docType, defaults.Prefix, defaults.Padding,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Document number generation failed").
			Mark(ierr.ErrDatabase)
	}

	r.logger.Infow("generated document number",
		"tenant_id", tenantID,
		"document_type", docType,
		"sequence", seq.CurrentValue)

	return &seq, nil
}

func (r *sequenceRepository) Get(ctx context.Context, docType types.DocumentType) (*document.NumberSequence, error) {
	query := `SELECT id, tenant_id, document_type, prefix, padding, current_value, created_at, updated_at
		FROM number_sequences WHERE tenant_id = $1 AND document_type = $2`

	var seq document.NumberSequence
	err := r.client.Querier(ctx).GetContext(ctx, &seq, query, types.GetTenantID(ctx), docType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("number sequence not found").
				WithHintf("No sequence exists yet for %s documents", docType).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get number sequence").
			Mark(ierr.ErrDatabase)
	}
	return &seq, nil
}
