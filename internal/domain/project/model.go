package project

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// Project groups documents and expenses under a client engagement
type Project struct {
	ID       string `db:"id" json:"id"`
	ClientID string `db:"client_id" json:"client_id"`
	Name     string `db:"name" json:"name"`
	// DefaultPONumber is copied onto documents created for this project when
	// they carry no PO number of their own
	DefaultPONumber *string `db:"default_po_number" json:"default_po_number,omitempty"`

	types.BaseModel
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide a project name").
			Mark(ierr.ErrValidation)
	}
	if p.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHint("Project must belong to a client").
			Mark(ierr.ErrValidation)
	}
	return nil
}
