package project

import "context"

// Repository provides tenant-scoped access to projects
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, p *Project) error
}
