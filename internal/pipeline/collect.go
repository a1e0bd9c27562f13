package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docdistill/internal/chunker"
)

// ExtractFunc produces one partial result from one chunk.
type ExtractFunc[T any] func(ctx context.Context, chunk chunker.Chunk) (T, error)

// Collect runs one extraction per chunk with bounded concurrency and returns
// the partial results strictly in chunk order. A failed chunk contributes
// empty() instead of aborting the run; the number of failed chunks is
// returned alongside for observability. If ctx is cancelled, in-flight calls
// are abandoned and no partial output is returned.
func Collect[T any](ctx context.Context, chunks []chunker.Chunk, extract ExtractFunc[T], empty func() T, limit int) ([]T, int, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]T, len(chunks))
	failed := make([]bool, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := extract(gctx, chunk)
			if err != nil {
				// Per-chunk recovery: substitute an empty partial result.
				// Cancellation is the only fatal condition.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i] = empty()
				failed[i] = true
				return nil
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	return results, failures, nil
}
