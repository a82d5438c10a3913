package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachBounded runs fn for every index with at most limit calls in flight.
// fn owns slot i of whatever result slice the caller prepared; one failing
// item never cancels the others.
func forEachBounded(ctx context.Context, limit, n int, fn func(ctx context.Context, i int)) {
	if limit <= 0 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
