// Command extract-html reads HTML (from stdin, a URL, or a directory of
// files), applies extraction mappings, and prints JSON.
//
// Usage (stdin):
//
//	cat page.html | extract-html -mappings mappings.json
//
// Usage (fetch URL):
//
//	extract-html -url "https://example.com/page" -mappings mappings.json
//
// Usage (directory mode, one JSON array across all files):
//
//	extract-html -dir "./pages" -mappings mappings.json
//
// Persist records while printing:
//
//	extract-html -dir "./pages" -mappings mappings.json -db "kind=sqlite,dsn=records.db"
//
// Debug (print outer HTML blocks):
//
//	cat page.html | extract-html -selector "div.item"
//
// Debug (print text for selector matches):
//
//	cat page.html | extract-html -selector "div.item" -text
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

// run is split out from main so we can unit test the command without spawning
// an OS process.
//
// It returns a Unix-style exit code:
//   - 0 for success
//   - 2 for usage/config errors
//   - 1 for operational/runtime errors
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	httpClient *http.Client,
) int {
	fs := flag.NewFlagSet("extract-html", flag.ContinueOnError)
	fs.SetOutput(stderr)

	onlyText := fs.Bool("text", false, "Debug: print text blocks for -selector matches (not JSON)")
	debugSelector := fs.String("selector", "", "Debug: CSS selector to print matches for (not JSON)")
	mappingsPath := fs.String("mappings", "", "Path to mappings JSON file (required for JSON extraction)")
	urlFlag := fs.String("url", "", "Optional: fetch HTML from URL instead of stdin")
	timeout := fs.Duration("timeout", 20*time.Second, "Timeout for -url fetch")
	dirFlag := fs.String("dir", "", "Optional: directory of HTML files to extract from in parallel")
	dbFlag := fs.String("db", "", "Optional: persist records, format kind=sqlite,dsn=records.db[,table=name]")
	metricsBackend := fs.String("metrics-backend", "none", "Metrics backend to use (datadog, none)")
	jobName := fs.String("job", "extract_html", "Job name tag for metrics")
	verbose := fs.Bool("v", false, "Enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logging.New(stderr, *verbose)
	defer func() { _ = logger.Sync() }()

	loader := extracthtml.NewLoader(httpClient, *timeout)

	// Debug selector mode needs HTML input (stdin or url) but NOT mappings.
	if *debugSelector != "" {
		html, err := loader.Load(ctx, extracthtml.Input{
			URL:   *urlFlag,
			Stdin: stdin,
		})
		if err != nil {
			fmt.Fprintf(stderr, "load html: %v\n", err)
			return 1
		}

		if err := extracthtml.DebugPrintSelector(stdout, html, *debugSelector, *onlyText); err != nil {
			fmt.Fprintf(stderr, "debug selector: %v\n", err)
			return 1
		}
		return 0
	}

	// Mapping-driven mode (JSON output)
	if *mappingsPath == "" {
		fmt.Fprintf(stderr, "missing -mappings\n")
		return 2
	}

	mf, err := extracthtml.LoadMappingFile(*mappingsPath)
	if err != nil {
		fmt.Fprintf(stderr, "load mappings: %v\n", err)
		return 2
	}

	observer, closeMetrics, code := initMetrics(ctx, *metricsBackend, *jobName, logger, stderr)
	if code != 0 {
		return code
	}
	defer closeMetrics()

	var sink storage.Sink
	if *dbFlag != "" {
		if mf.TableSelector != "" {
			fmt.Fprintf(stderr, "-db requires a container_selector mapping\n")
			return 2
		}
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

	// Directory mode: parallel extraction across files, one JSON array out.
	if *dirFlag != "" {
		if mf.TableSelector != "" {
			fmt.Fprintf(stderr, "dir mode requires a container_selector mapping\n")
			return 2
		}
		return runDir(ctx, stdout, stderr, enc, *dirFlag, mf, sink, observer, logger)
	}

	// Single input mode: stdin OR -url
	html, err := loader.Load(ctx, extracthtml.Input{
		URL:   *urlFlag,
		Stdin: stdin,
	})
	if err != nil {
		fmt.Fprintf(stderr, "load html: %v\n", err)
		return 1
	}

	// Table mode: output [][]string (one slice per row)
	if mf.TableSelector != "" {
		start := time.Now()
		rows, err := extracthtml.ExtractTable(html, mf.TableSelector)
		if err != nil {
			metrics.Observe(observer, "table", "error", 1, 0, time.Since(start).Seconds())
			fmt.Fprintf(stderr, "extract table: %v\n", err)
			return 1
		}
		metrics.Observe(observer, "table", "ok", 1, len(rows), time.Since(start).Seconds())
		logger.Debug("table extracted", zap.Int("rows", len(rows)))
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintf(stderr, "encode json: %v\n", err)
			return 1
		}
		return 0
	}

	// Record mode: output []object (one per record container)
	start := time.Now()
	records, err := extracthtml.ExtractRecords(html, mf.ContainerSelector, mf.Fields)
	if err != nil {
		metrics.Observe(observer, "generic", "error", 1, 0, time.Since(start).Seconds())
		fmt.Fprintf(stderr, "extract records: %v\n", err)
		return 1
	}
	metrics.Observe(observer, "generic", "ok", 1, len(records), time.Since(start).Seconds())
	logger.Debug("records extracted", zap.Int("records", len(records)))

	if sink != nil {
		if code := persist(ctx, stderr, sink, sourceName(*urlFlag), records); code != 0 {
			return code
		}
	}
	if err := enc.Encode(records); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}

// runDir handles directory mode. Without a sink it streams straight from the
// bulk extractor; with a sink it gathers per-file record lists so provenance
// (file name, record position) can be persisted alongside printing.
func runDir(
	ctx context.Context,
	stdout io.Writer,
	stderr io.Writer,
	enc *json.Encoder,
	dir string,
	mf *extracthtml.MappingFile,
	sink storage.Sink,
	observer metrics.Backend,
	logger *zap.Logger,
) int {
	if sink == nil {
		start := time.Now()
		if err := extracthtml.StreamFromDir(ctx, stdout, dir, mf, enc); err != nil {
			metrics.Observe(observer, "generic", "error", 0, 0, time.Since(start).Seconds())
			fmt.Fprintf(stderr, "dir extract: %v\n", err)
			return 1
		}
		metrics.Observe(observer, "generic", "ok", 0, 0, time.Since(start).Seconds())
		return 0
	}

	ex, err := extracthtml.NewExtractor(mf.ContainerSelector, mf.Fields)
	if err != nil {
		fmt.Fprintf(stderr, "compile mappings: %v\n", err)
		return 2
	}

	pages, err := extracthtml.ReadDirPages(dir)
	if err != nil {
		fmt.Fprintf(stderr, "read dir: %v\n", err)
		return 1
	}
	htmls := make([]string, len(pages))
	for i, p := range pages {
		htmls[i] = p.HTML
	}

	start := time.Now()
	perPage, err := ex.ExtractBulk(ctx, htmls)
	if err != nil {
		metrics.Observe(observer, "generic", "error", len(pages), 0, time.Since(start).Seconds())
		fmt.Fprintf(stderr, "dir extract: %v\n", err)
		return 1
	}

	var out []map[string]string
	for i, recs := range perPage {
		if code := persist(ctx, stderr, sink, pages[i].Name, recs); code != 0 {
			return code
		}
		for _, rec := range recs {
			withSource := make(map[string]string, len(rec)+1)
			for k, v := range rec {
				withSource[k] = v
			}
			withSource["source_file"] = pages[i].Name
			out = append(out, withSource)
		}
	}
	metrics.Observe(observer, "generic", "ok", len(pages), len(out), time.Since(start).Seconds())
	logger.Debug("dir extracted", zap.Int("pages", len(pages)), zap.Int("records", len(out)))

	if out == nil {
		out = []map[string]string{}
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}

// initMetrics resolves the -metrics-backend flag. A failed Datadog init logs
// and degrades to Noop rather than failing the run; an unknown backend name is
// a usage error.
func initMetrics(
	ctx context.Context,
	backendName string,
	jobName string,
	logger *zap.Logger,
	stderr io.Writer,
) (metrics.Backend, func(), int) {
	switch backendName {
	case "datadog":
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: jobName,
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			logger.Warn("metrics init failed; continuing without", zap.Error(err))
			return metrics.Noop{}, func() {}, 0
		}
		return b, func() {
			if err := b.Close(); err != nil {
				logger.Warn("metrics close/flush", zap.Error(err))
			}
		}, 0

	case "", "none":
		return metrics.Noop{}, func() {}, 0

	default:
		fmt.Fprintf(stderr, "unknown -metrics-backend %q\n", backendName)
		return nil, nil, 2
	}
}

// persist inserts one source's records into the sink.
func persist(ctx context.Context, stderr io.Writer, sink storage.Sink, source string, recs []map[string]string) int {
	if len(recs) == 0 {
		return 0
	}
	rows := make([]storage.Record, len(recs))
	for i, rec := range recs {
		rows[i] = storage.Record{Source: source, Position: i, Fields: rec}
	}
	if _, err := sink.InsertRecords(ctx, rows); err != nil {
		fmt.Fprintf(stderr, "insert records: %v\n", err)
		return 1
	}
	return 0
}

func sourceName(url string) string {
	if url != "" {
		return url
	}
	return "stdin"
}
