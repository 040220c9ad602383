package service

import (
	"context"

	"github.com/solobooks/solobooks/internal/api/dto"
	ierr "github.com/solobooks/solobooks/internal/errors"
)

// ClientService manages the parties documents are billed to and their
// projects
type ClientService interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id string) (*dto.ClientResponse, error)
	CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error)
}

type clientService struct {
	ServiceParams
}

func NewClientService(params ServiceParams) ClientService {
	return &clientService{ServiceParams: params}
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToClient(ctx)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.ClientRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return dto.NewClientResponse(c), nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*dto.ClientResponse, error) {
	c, err := s.ClientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewClientResponse(c), nil
}

func (s *clientService) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ClientRepo.Get(ctx, req.ClientID); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Project client does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	p := req.ToProject(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.ProjectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return dto.NewProjectResponse(p), nil
}

func (s *clientService) GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	p, err := s.ProjectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProjectResponse(p), nil
}
