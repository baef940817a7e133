package offers

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractBulk processes pages in parallel and returns per-page offer lists
// index-aligned with the input.
//
// The fan-out mirrors the generic bulk extractor: bounded workers, no shared
// mutable state, index-keyed gather so result order never depends on
// scheduling order.
func ExtractBulk(ctx context.Context, pages []string) ([][]Offer, error) {
	results := make([][]Offer, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found, err := Extract(page)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			results[i] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractBulkTagged is ExtractBulk keyed by caller-supplied opaque
// identifiers instead of position.
//
// The identifier slice must be exactly as long as the page slice; a length
// mismatch is an explicit error rather than a silent zip-to-shorter. When
// identifiers repeat, the last page wins.
func ExtractBulkTagged(ctx context.Context, pages, identifiers []string) (map[string][]Offer, error) {
	if len(pages) != len(identifiers) {
		return nil, fmt.Errorf("offers: %d pages but %d identifiers", len(pages), len(identifiers))
	}

	ordered, err := ExtractBulk(ctx, pages)
	if err != nil {
		return nil, err
	}

	tagged := make(map[string][]Offer, len(identifiers))
	for i, id := range identifiers {
		tagged[id] = ordered[i]
	}
	return tagged, nil
}
