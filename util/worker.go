package util

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// RunLimited calls callback for every index in [0, n) with at most limit
// callbacks at once. The first error cancels the context of the others.
func RunLimited(ctx context.Context, limit int64, n int, callback func(context.Context, int) error) error {
	if n < 1 {
		return nil
	}

	if limit < 1 {
		limit = 1
	}

	sem := semaphore.NewWeighted(limit)
	eg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		index := i

		eg.Go(func() error {
			defer sem.Release(1)

			return callback(ctx, index)
		})
	}

	return eg.Wait()
}
