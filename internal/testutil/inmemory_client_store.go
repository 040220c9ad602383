package testutil

import (
	"context"

	"github.com/solobooks/solobooks/internal/domain/client"
	"github.com/solobooks/solobooks/internal/domain/project"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	*InMemoryStore[*client.Client]
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{
		InMemoryStore: NewInMemoryStore[*client.Client](),
	}
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	if c == nil {
		return ierr.NewError("client cannot be nil").Mark(ierr.ErrValidation)
	}
	cp := *c
	return s.InMemoryStore.Create(ctx, c.ID, &cp)
}

func (s *InMemoryClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TenantID != types.GetTenantID(ctx) || c.Status == types.StatusDeleted {
		return nil, ierr.NewError("client not found").
			WithHintf("Client with id %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryClientStore) Update(ctx context.Context, c *client.Client) error {
	if _, err := s.Get(ctx, c.ID); err != nil {
		return err
	}
	cp := *c
	return s.InMemoryStore.Update(ctx, c.ID, &cp)
}

// InMemoryProjectStore implements project.Repository
type InMemoryProjectStore struct {
	*InMemoryStore[*project.Project]
}

func NewInMemoryProjectStore() *InMemoryProjectStore {
	return &InMemoryProjectStore{
		InMemoryStore: NewInMemoryStore[*project.Project](),
	}
}

func copyProject(p *project.Project) *project.Project {
	cp := *p
	cp.DefaultPONumber = copyStringPtr(p.DefaultPONumber)
	return &cp
}

func (s *InMemoryProjectStore) Create(ctx context.Context, p *project.Project) error {
	if p == nil {
		return ierr.NewError("project cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyProject(p))
}

func (s *InMemoryProjectStore) Get(ctx context.Context, id string) (*project.Project, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TenantID != types.GetTenantID(ctx) || p.Status == types.StatusDeleted {
		return nil, ierr.NewError("project not found").
			WithHintf("Project with id %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyProject(p), nil
}

func (s *InMemoryProjectStore) Update(ctx context.Context, p *project.Project) error {
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyProject(p))
}
