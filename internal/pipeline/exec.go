package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ExecMode is the declared concurrency policy for one acquisition stage.
type ExecMode int

const (
	// Parallel issues every unit of work concurrently and fails fast on
	// the first error.
	Parallel ExecMode = iota
	// Sequential runs units strictly in input order and aborts on the
	// first error, leaving earlier results in place.
	Sequential
)

func (m ExecMode) String() string {
	if m == Sequential {
		return "sequential"
	}
	return "parallel"
}

// runBatch executes fn for slots 0..n-1 under the given mode. Each fn call
// writes only its own output slot, so no locking is needed; results are
// always positional, never completion-ordered.
func runBatch(ctx context.Context, mode ExecMode, n int, fn func(ctx context.Context, i int) error) error {
	if mode == Sequential {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
