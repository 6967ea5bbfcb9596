package hmm

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DecodeAll decodes every sequence with at most workers concurrent decodes
// (unbounded when workers <= 0). Results keep the input order. The first
// failure cancels the remaining work.
func DecodeAll(ctx context.Context, m *Model, sequences [][]string, workers int) ([]Result, error) {
	results := make([]Result, len(sequences))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, seq := range sequences {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r, err := m.Decode(seq)
			if err != nil {
				return errors.Wrapf(err, "sequence %d", i)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
