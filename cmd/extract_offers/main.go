// Command extract-offers runs the fixed-shape shopping-offer-grid extractor
// over HTML pages and prints JSON.
//
// Usage (stdin, one page, JSON array out):
//
//	cat page.html | extract-offers
//
// Usage (fetch URL):
//
//	extract-offers -url "https://example.com/offers"
//
// Usage (directory mode, JSON object keyed by file name):
//
//	extract-offers -dir "./pages"
//
// Persist offers while printing:
//
//	extract-offers -dir "./pages" -db "kind=sqlite,dsn=offers.db,table=offers"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"extract/internal/extracthtml"
	"extract/internal/logging"
	"extract/internal/metrics"
	"extract/internal/metrics/datadog"
	"extract/internal/offers"
	"extract/internal/storage"

	// register all storage backends with the factory.
	_ "extract/internal/storage/all"
)

func main() {
	os.Exit(run(
		context.Background(),
		os.Args[1:],
		os.Stdin,
		os.Stdout,
		os.Stderr,
		http.DefaultClient,
	))
}

// run returns a Unix-style exit code: 0 success, 2 usage/config error, 1
// operational error. Split from main for unit testing.
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	httpClient *http.Client,
) int {
	fs := flag.NewFlagSet("extract-offers", flag.ContinueOnError)
	fs.SetOutput(stderr)

	urlFlag := fs.String("url", "", "Optional: fetch HTML from URL instead of stdin")
	timeout := fs.Duration("timeout", 20*time.Second, "Timeout for -url fetch")
	dirFlag := fs.String("dir", "", "Optional: directory of HTML files; output is keyed by file name")
	dbFlag := fs.String("db", "", "Optional: persist offers, format kind=sqlite,dsn=offers.db[,table=name]")
	metricsBackend := fs.String("metrics-backend", "none", "Metrics backend to use (datadog, none)")
	jobName := fs.String("job", "extract_offers", "Job name tag for metrics")
	verbose := fs.Bool("v", false, "Enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logging.New(stderr, *verbose)
	defer func() { _ = logger.Sync() }()

	var observer metrics.Backend = metrics.Noop{}
	switch *metricsBackend {
	case "datadog":
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: *jobName,
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			logger.Warn("metrics init failed; continuing without", zap.Error(err))
		} else {
			observer = b
			defer func() {
				if err := b.Close(); err != nil {
					logger.Warn("metrics close/flush", zap.Error(err))
				}
			}()
		}
	case "", "none":
	default:
		fmt.Fprintf(stderr, "unknown -metrics-backend %q\n", *metricsBackend)
		return 2
	}

	var sink storage.Sink
	if *dbFlag != "" {
		cfg, err := storage.ParseConfig(*dbFlag)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 2
		}
		sink, err = storage.New(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "open storage: %v\n", err)
			return 1
		}
		defer sink.Close()
		if err := sink.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(stderr, "ensure schema: %v\n", err)
			return 1
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)

	// Directory mode: bulk extraction tagged by file name.
	if *dirFlag != "" {
		pages, err := extracthtml.ReadDirPages(*dirFlag)
		if err != nil {
			fmt.Fprintf(stderr, "read dir: %v\n", err)
			return 1
		}

		htmls := make([]string, len(pages))
		names := make([]string, len(pages))
		for i, p := range pages {
			htmls[i] = p.HTML
			names[i] = p.Name
		}

		start := time.Now()
		tagged, err := offers.ExtractBulkTagged(ctx, htmls, names)
		if err != nil {
			metrics.Observe(observer, "offers", "error", len(pages), 0, time.Since(start).Seconds())
			fmt.Fprintf(stderr, "extract offers: %v\n", err)
			return 1
		}
		total := 0
		for _, found := range tagged {
			total += len(found)
		}
		metrics.Observe(observer, "offers", "ok", len(pages), total, time.Since(start).Seconds())
		logger.Debug("dir extracted", zap.Int("pages", len(pages)), zap.Int("offers", total))

		if sink != nil {
			for name, found := range tagged {
				if code := persistOffers(ctx, stderr, sink, name, found); code != 0 {
					return code
				}
			}
		}
		if err := enc.Encode(tagged); err != nil {
			fmt.Fprintf(stderr, "encode json: %v\n", err)
			return 1
		}
		return 0
	}

	// Single input mode: stdin OR -url
	loader := extracthtml.NewLoader(httpClient, *timeout)
	html, err := loader.Load(ctx, extracthtml.Input{
		URL:   *urlFlag,
		Stdin: stdin,
	})
	if err != nil {
		fmt.Fprintf(stderr, "load html: %v\n", err)
		return 1
	}

	start := time.Now()
	found, err := offers.Extract(html)
	if err != nil {
		metrics.Observe(observer, "offers", "error", 1, 0, time.Since(start).Seconds())
		fmt.Fprintf(stderr, "extract offers: %v\n", err)
		return 1
	}
	metrics.Observe(observer, "offers", "ok", 1, len(found), time.Since(start).Seconds())
	logger.Debug("extracted", zap.Int("offers", len(found)))

	source := *urlFlag
	if source == "" {
		source = "stdin"
	}
	if sink != nil {
		if code := persistOffers(ctx, stderr, sink, source, found); code != 0 {
			return code
		}
	}
	if err := enc.Encode(found); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}

// persistOffers inserts one source's offers into the sink, flattened to the
// generic record payload shape.
func persistOffers(ctx context.Context, stderr io.Writer, sink storage.Sink, source string, found []offers.Offer) int {
	if len(found) == 0 {
		return 0
	}
	rows := make([]storage.Record, len(found))
	for i, o := range found {
		rows[i] = storage.Record{
			Source:   source,
			Position: i,
			Fields: map[string]string{
				"seller_name": o.SellerName,
				"offer_price": o.OfferPrice,
				"total_price": o.TotalPrice,
				"link":        o.Link,
				"type":        o.Type,
			},
		}
	}
	if _, err := sink.InsertRecords(ctx, rows); err != nil {
		fmt.Fprintf(stderr, "insert offers: %v\n", err)
		return 1
	}
	return 0
}
