package document

import (
	"context"

	"github.com/solobooks/solobooks/internal/types"
)

// Repository provides tenant-scoped access to documents and their line items
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	// CreateWithLineItems persists the document and its line items atomically
	CreateWithLineItems(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	// Update writes the document header guarded by its Version; a stale
	// version surfaces as a version conflict
	Update(ctx context.Context, doc *Document) error
	// UpdateWithLineItems replaces the document's line items and writes the
	// header in one atomic unit
	UpdateWithLineItems(ctx context.Context, doc *Document) error
	List(ctx context.Context, filter *types.DocumentFilter) ([]*Document, error)
	Count(ctx context.Context, filter *types.DocumentFilter) (int, error)
}

// NumberSequenceRepository provides the atomic increment-and-read primitive
// behind document numbering. NextValue must be safe under concurrent
// finalize calls for the same (tenant, type): no two callers may observe the
// same value.
type NumberSequenceRepository interface {
	// NextValue increments and returns the sequence for (tenant, docType),
	// creating it from defaults on first use
	NextValue(ctx context.Context, docType types.DocumentType, defaults SequenceDefaults) (*NumberSequence, error)
	// Get returns the sequence without incrementing it
	Get(ctx context.Context, docType types.DocumentType) (*NumberSequence, error)
}
