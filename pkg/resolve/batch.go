package resolve

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/strictemit/pkg/metadata"
)

// ResolveAll resolves queries concurrently and returns the descriptors in
// query order. The first failure cancels the remaining work and is returned
// wrapped with the index and text of the failing query.
func (r *Resolver) ResolveAll(ctx context.Context, queries []metadata.Query) ([]metadata.MemberDescriptor, error) {
	results := make([]metadata.MemberDescriptor, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.parallelism, len(queries)))

	for i, q := range queries {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			d, err := r.Resolve(q)
			if err != nil {
				return fmt.Errorf("query %d (%s): %w", i, q, err)
			}
			results[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
