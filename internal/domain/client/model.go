package client

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/types"
)

// Client is the party a document is billed to
type Client struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email,omitempty"`

	types.BaseModel
}

func (c *Client) Validate() error {
	if c.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide a client name").
			Mark(ierr.ErrValidation)
	}
	return nil
}
