// Package metrics defines the minimal metrics interface the extraction
// commands depend on.
//
// The extraction engine itself stays metrics-free; commands observe at the
// boundary (pages decoded, records extracted, extraction duration) against
// this interface and plug in a real backend (see internal/metrics/datadog)
// or Noop.
package metrics

// Labels attach dimensions to a metric observation.
type Labels map[string]string

// Metric names emitted by the commands. Backends may ignore names they do
// not understand.
const (
	// PagesTotal counts processed pages. Labels: kind (generic|table|offers),
	// status (ok|error).
	PagesTotal = "extract_pages_total"

	// RecordsTotal counts extracted records. Labels: kind.
	RecordsTotal = "extract_records_total"

	// DurationSeconds observes wall time of one extraction call. Labels: kind.
	DurationSeconds = "extract_duration_seconds"
)

// Backend receives metric observations.
//
// Implementations must be safe for concurrent use; the bulk paths observe
// from multiple goroutines.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Observe records the standard per-call triple the commands emit: pages
// processed, records produced, and elapsed extraction time. Backends drop
// zero-valued counter deltas, so calls with records == 0 are safe.
func Observe(b Backend, kind, status string, pages, records int, seconds float64) {
	b.IncCounter(PagesTotal, float64(pages), Labels{"kind": kind, "status": status})
	b.IncCounter(RecordsTotal, float64(records), Labels{"kind": kind})
	b.ObserveHistogram(DurationSeconds, seconds, Labels{"kind": kind})
}

// Noop discards all observations. It is the default backend so commands
// never need nil checks.
type Noop struct{}

func (Noop) IncCounter(string, float64, Labels)       {}
func (Noop) ObserveHistogram(string, float64, Labels) {}

var _ Backend = Noop{}
