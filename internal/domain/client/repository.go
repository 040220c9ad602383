package client

import "context"

// Repository provides tenant-scoped access to clients
type Repository interface {
	Create(ctx context.Context, c *Client) error
	Get(ctx context.Context, id string) (*Client, error)
	Update(ctx context.Context, c *Client) error
}
