package types

// Status is a type for the row-level lifecycle of a resource in the database.
// This is independent of the business status of a document; it exists so rows
// can be soft deleted without losing the ledger history.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

func (s Status) String() string {
	return string(s)
}
