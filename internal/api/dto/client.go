package dto

import (
	"context"

	"github.com/solobooks/solobooks/internal/domain/client"
	"github.com/solobooks/solobooks/internal/domain/project"
	"github.com/solobooks/solobooks/internal/types"
	"github.com/solobooks/solobooks/internal/validator"
)

// CreateClientRequest registers a party documents can be billed to
type CreateClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

func (r *CreateClientRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateClientRequest) ToClient(ctx context.Context) *client.Client {
	return &client.Client{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT),
		Name:      r.Name,
		Email:     r.Email,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type ClientResponse struct {
	*client.Client
}

func NewClientResponse(c *client.Client) *ClientResponse {
	return &ClientResponse{Client: c}
}

// CreateProjectRequest groups documents and expenses under a client
// engagement
type CreateProjectRequest struct {
	ClientID        string  `json:"client_id" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	DefaultPONumber *string `json:"default_po_number,omitempty"`
}

func (r *CreateProjectRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateProjectRequest) ToProject(ctx context.Context) *project.Project {
	return &project.Project{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROJECT),
		ClientID:        r.ClientID,
		Name:            r.Name,
		DefaultPONumber: r.DefaultPONumber,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
}

type ProjectResponse struct {
	*project.Project
}

func NewProjectResponse(p *project.Project) *ProjectResponse {
	return &ProjectResponse{Project: p}
}
