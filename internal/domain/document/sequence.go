package document

import (
	"fmt"
	"time"

	"github.com/solobooks/solobooks/internal/types"
)

// NumberSequence is a tenant's document number counter for one document type.
// CurrentValue is strictly increasing and values are never reused; gaps from
// abandoned finalizations are acceptable.
type NumberSequence struct {
	ID           string             `db:"id"`
	TenantID     string             `db:"tenant_id"`
	DocumentType types.DocumentType `db:"document_type"`
	Prefix       string             `db:"prefix"`
	Padding      int                `db:"padding"`
	CurrentValue int64              `db:"current_value"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
}

// SequenceDefaults seed a sequence row the first time a tenant finalizes a
// document of a given type
type SequenceDefaults struct {
	Prefix  string
	Padding int
}

// FormatNumber renders a document number as prefix plus the zero padded value
func FormatNumber(prefix string, padding int, value int64) string {
	return fmt.Sprintf("%s%0*d", prefix, padding, value)
}

// Number renders the sequence's current value as a document number
func (s *NumberSequence) Number() string {
	return FormatNumber(s.Prefix, s.Padding, s.CurrentValue)
}
