package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	ierr "github.com/solobooks/solobooks/internal/errors"
)

const conflictMaxRetries = 3

// withConflictRetry runs op, retrying with backoff when a concurrent
// writer bumped the document version underneath us. Any other error is
// returned immediately.
func withConflictRetry(ctx context.Context, op func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ierr.IsVersionConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, conflictMaxRetries), ctx))
}
