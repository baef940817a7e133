package extracthtml

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractBulk fans the extractor out over pages with bounded parallelism and
// gathers results preserving input order.
//
// Each page is processed by an independent goroutine with no shared mutable
// state: the extractor is read-only after construction and every worker owns
// its page's parsed tree and records exclusively. Results land in an
// index-keyed slice, so output order never depends on scheduling order, and
// ExtractBulk(pages)[i] equals Extract(pages[i]) for every i.
//
// Failure policy is fail-fast for the whole batch: the first page error (or
// ctx cancellation) cancels outstanding work and fails the call. There is no
// per-page partial-success mode.
func (e *Extractor) ExtractBulk(ctx context.Context, pages []string) ([][]map[string]string, error) {
	results := make([][]map[string]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := e.Extract(page)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			results[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractRecordsBulk compiles the selectors once and extracts every page in
// parallel. See Extractor.ExtractBulk for ordering and failure semantics.
func ExtractRecordsBulk(ctx context.Context, pages []string, containerSelector string, fields map[string]string) ([][]map[string]string, error) {
	ex, err := NewExtractor(containerSelector, fields)
	if err != nil {
		return nil, err
	}
	return ex.ExtractBulk(ctx, pages)
}
