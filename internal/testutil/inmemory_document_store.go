package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/solobooks/solobooks/internal/domain/document"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// InMemoryDocumentStore implements document.Repository with the same
// version-guard semantics as the postgres repository
type InMemoryDocumentStore struct {
	*InMemoryStore[*document.Document]
	// serializes update version checks against concurrent writers
	updateMu sync.Mutex
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		InMemoryStore: NewInMemoryStore[*document.Document](),
	}
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyDecimalPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func copyLineItem(li *document.LineItem) *document.LineItem {
	if li == nil {
		return nil
	}
	c := *li
	c.TaxRatePercent = copyDecimalPtr(li.TaxRatePercent)
	c.ExpenseID = copyStringPtr(li.ExpenseID)
	return &c
}

func copyDocument(doc *document.Document) *document.Document {
	if doc == nil {
		return nil
	}
	c := *doc
	c.DocumentNumber = copyStringPtr(doc.DocumentNumber)
	c.ProjectID = copyStringPtr(doc.ProjectID)
	c.PONumber = copyStringPtr(doc.PONumber)
	c.IssueDate = copyTimePtr(doc.IssueDate)
	c.DueDate = copyTimePtr(doc.DueDate)
	c.ExpiryDate = copyTimePtr(doc.ExpiryDate)
	c.SentAt = copyTimePtr(doc.SentAt)
	c.AcceptedAt = copyTimePtr(doc.AcceptedAt)
	c.FinalizedAt = copyTimePtr(doc.FinalizedAt)
	c.PaidAt = copyTimePtr(doc.PaidAt)
	c.VoidedAt = copyTimePtr(doc.VoidedAt)
	c.ArchivedAt = copyTimePtr(doc.ArchivedAt)
	if doc.Metadata != nil {
		c.Metadata = lo.Assign(types.Metadata{}, doc.Metadata)
	}
	c.LineItems = lo.Map(doc.LineItems, func(li *document.LineItem, _ int) *document.LineItem {
		return copyLineItem(li)
	})
	return &c
}

func (s *InMemoryDocumentStore) Create(ctx context.Context, doc *document.Document) error {
	if doc == nil {
		return ierr.NewError("document cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, doc.ID, copyDocument(doc))
}

func (s *InMemoryDocumentStore) CreateWithLineItems(ctx context.Context, doc *document.Document) error {
	return s.Create(ctx, doc)
}

func (s *InMemoryDocumentStore) Get(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.TenantID != types.GetTenantID(ctx) || doc.Status == types.StatusDeleted {
		return nil, ierr.NewError("document not found").
			WithHintf("Document with id %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyDocument(doc), nil
}

func (s *InMemoryDocumentStore) Update(ctx context.Context, doc *document.Document) error {
	return s.update(ctx, doc, false)
}

func (s *InMemoryDocumentStore) UpdateWithLineItems(ctx context.Context, doc *document.Document) error {
	return s.update(ctx, doc, true)
}

func (s *InMemoryDocumentStore) update(ctx context.Context, doc *document.Document, withLineItems bool) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	existing, err := s.Get(ctx, doc.ID)
	if err != nil {
		return err
	}

	if existing.Version != doc.Version {
		return ierr.NewError("document version conflict").
			WithHint("The document was modified by another request").
			WithReportableDetails(map[string]any{
				"document_id": doc.ID,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	doc.Version++
	stored := copyDocument(doc)
	if !withLineItems {
		stored.LineItems = existing.LineItems
		doc.LineItems = existing.LineItems
	}
	return s.InMemoryStore.Update(ctx, doc.ID, stored)
}

func documentFilterFn(ctx context.Context, doc *document.Document, filter interface{}) bool {
	f, ok := filter.(*types.DocumentFilter)
	if !ok {
		return true
	}

	if doc.TenantID != types.GetTenantID(ctx) || doc.Status == types.StatusDeleted {
		return false
	}
	if !f.IncludeArchived && doc.ArchivedAt != nil {
		return false
	}
	if f.ClientID != "" && doc.ClientID != f.ClientID {
		return false
	}
	if f.ProjectID != "" && (doc.ProjectID == nil || *doc.ProjectID != f.ProjectID) {
		return false
	}
	if f.DocumentType != "" && doc.DocumentType != f.DocumentType {
		return false
	}
	if len(f.DocumentStatus) > 0 && !lo.Contains(f.DocumentStatus, doc.DocumentStatus) {
		return false
	}
	return true
}

func (s *InMemoryDocumentStore) List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error) {
	docs, err := s.InMemoryStore.List(ctx, filter, documentFilterFn, func(i, j *document.Document) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(docs, func(doc *document.Document, _ int) *document.Document {
		return copyDocument(doc)
	}), nil
}

func (s *InMemoryDocumentStore) Count(ctx context.Context, filter *types.DocumentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, documentFilterFn)
}

// InMemoryNumberSequenceStore implements document.NumberSequenceRepository;
// NextValue is serialized so concurrent finalizations never observe the same
// value
type InMemoryNumberSequenceStore struct {
	mu        sync.Mutex
	sequences map[string]*document.NumberSequence
}

func NewInMemoryNumberSequenceStore() *InMemoryNumberSequenceStore {
	return &InMemoryNumberSequenceStore{
		sequences: make(map[string]*document.NumberSequence),
	}
}

func sequenceKey(tenantID string, docType types.DocumentType) string {
	return tenantID + "/" + string(docType)
}

func (s *InMemoryNumberSequenceStore) NextValue(ctx context.Context, docType types.DocumentType, defaults document.SequenceDefaults) (*document.NumberSequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKey(types.GetTenantID(ctx), docType)
	seq, ok := s.sequences[key]
	if !ok {
		now := time.Now().UTC()
		seq = &document.NumberSequence{
			ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NUMBER_SEQUENCE),
			TenantID:     types.GetTenantID(ctx),
			DocumentType: docType,
			Prefix:       defaults.Prefix,
			Padding:      defaults.Padding,
			CurrentValue: 0,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.sequences[key] = seq
	}

	seq.CurrentValue++
	seq.UpdatedAt = time.Now().UTC()

	c := *seq
	return &c, nil
}

func (s *InMemoryNumberSequenceStore) Get(ctx context.Context, docType types.DocumentType) (*document.NumberSequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.sequences[sequenceKey(types.GetTenantID(ctx), docType)]
	if !ok {
		return nil, ierr.NewError("number sequence not found").
			WithHintf("No sequence exists for document type %s", docType).
			Mark(ierr.ErrNotFound)
	}
	c := *seq
	return &c, nil
}

func (s *InMemoryNumberSequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences = make(map[string]*document.NumberSequence)
}
