package testutil

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient satisfies postgres.IClient for service tests backed by
// the in-memory stores; WithTx just runs the function since the stores have
// no transactions
type MockPostgresClient struct {
	logger *logger.Logger
}

func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (c *MockPostgresClient) TxFromContext(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return nil
}
