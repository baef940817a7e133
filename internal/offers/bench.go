package offers

import (
	"context"
	"time"
)

// BenchResult reports sequential-versus-parallel timing for the offer
// extractor over a fixed page set.
//
// This is a diagnostic, not a correctness-bearing surface: it lives outside
// the production extraction path and is reached only from cmd/bench_offers.
type BenchResult struct {
	Pages          int     `json:"pages_count"`
	Iterations     int     `json:"iterations"`
	SequentialSecs float64 `json:"sequential_seconds"`
	ParallelSecs   float64 `json:"parallel_seconds"`
	Speedup        float64 `json:"speedup"`
}

// Benchmark runs the extractor over pages sequentially and then via
// ExtractBulk, iterations times each, and reports elapsed time and the
// speedup ratio.
func Benchmark(ctx context.Context, pages []string, iterations int) (BenchResult, error) {
	if iterations < 1 {
		iterations = 1
	}

	seqStart := time.Now()
	for i := 0; i < iterations; i++ {
		for _, page := range pages {
			if _, err := Extract(page); err != nil {
				return BenchResult{}, err
			}
		}
	}
	sequential := time.Since(seqStart).Seconds()

	parStart := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := ExtractBulk(ctx, pages); err != nil {
			return BenchResult{}, err
		}
	}
	parallel := time.Since(parStart).Seconds()

	res := BenchResult{
		Pages:          len(pages),
		Iterations:     iterations,
		SequentialSecs: sequential,
		ParallelSecs:   parallel,
	}
	if parallel > 0 {
		res.Speedup = sequential / parallel
	}
	return res, nil
}
