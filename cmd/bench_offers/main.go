// Command bench-offers times the offer-grid extractor over a directory of
// HTML pages, sequentially versus in parallel, and prints the timings as
// JSON.
//
// Usage:
//
//	bench-offers -dir "./pages" -iterations 25
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"extract/internal/extracthtml"
	"extract/internal/logging"
	"extract/internal/offers"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns a Unix-style exit code: 0 success, 2 usage/config error, 1
// operational error. Split from main for unit testing.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bench-offers", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dirFlag := fs.String("dir", "", "Directory of HTML pages to benchmark against (required)")
	iterations := fs.Int("iterations", 10, "How many passes over the page set per mode")
	verbose := fs.Bool("v", false, "Enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dirFlag == "" {
		fmt.Fprintf(stderr, "missing -dir\n")
		return 2
	}

	logger := logging.New(stderr, *verbose)
	defer func() { _ = logger.Sync() }()

	pages, err := extracthtml.ReadDirPages(*dirFlag)
	if err != nil {
		fmt.Fprintf(stderr, "read dir: %v\n", err)
		return 1
	}
	if len(pages) == 0 {
		fmt.Fprintf(stderr, "no readable pages in %s\n", *dirFlag)
		return 1
	}

	htmls := make([]string, len(pages))
	for i, p := range pages {
		htmls[i] = p.HTML
	}
	logger.Debug("benchmarking", zap.Int("pages", len(htmls)), zap.Int("iterations", *iterations))

	res, err := offers.Benchmark(ctx, htmls, *iterations)
	if err != nil {
		fmt.Fprintf(stderr, "benchmark: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}
