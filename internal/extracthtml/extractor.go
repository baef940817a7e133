// Package extracthtml extracts structured records from HTML documents using
// declarative CSS-selector field mappings.
//
// The caller names a container selector (the repeated root element of each
// record) and a set of field specs ("selector" for text, "selector@attr" for
// an attribute value). All selectors are compiled once per call, then applied
// to every matching container in document order. Each container is re-rooted
// as an independent fragment before field selectors run, so field selectors
// are scoped to that container (see Rescope).
package extracthtml

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Policy names a component's failure-handling mode.
//
// The generic extractor runs FailFast: a failure while processing any
// container aborts the call. The offer-grid extractor (internal/offers) is
// deliberately BestEffort per row. The choice is carried explicitly so the
// difference is a documented decision, not an accident of code path.
type Policy int

const (
	// FailFast aborts the enclosing call on the first error.
	FailFast Policy = iota
	// BestEffort skips the failing unit and keeps going.
	BestEffort
)

// Extractor applies a compiled container selector and field mapping to
// documents. It is immutable after construction and safe for concurrent use
// across goroutines; compiled selectors carry no mutable state.
type Extractor struct {
	Container cascadia.Selector
	Fields    FieldMapping
	Policy    Policy
}

// NewExtractor compiles the container selector and every field spec.
//
// Fail-fast: any selector that does not compile fails construction with a
// *SelectorError naming the offending selector and its field. This policy is
// uniform across the single-document and bulk paths.
func NewExtractor(containerSelector string, fields map[string]string) (*Extractor, error) {
	container, err := cascadia.Compile(containerSelector)
	if err != nil {
		return nil, &SelectorError{Selector: containerSelector, Field: "container", Err: err}
	}
	fm, err := CompileFieldMapping(fields)
	if err != nil {
		return nil, err
	}
	return &Extractor{Container: container, Fields: fm, Policy: FailFast}, nil
}

// Extract parses page and returns one record per matched container, in
// document order.
//
// Guarantees:
//   - Every record contains exactly the keys of the field mapping; a field
//     with no match (or a matched element lacking the attribute) is "".
//   - Zero matched containers yield an empty slice, not an error.
//   - Deterministic: identical input produces identical output.
//   - The parsed document is never mutated.
func (e *Extractor) Extract(page string) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &HTMLParseError{Err: err}
	}
	return e.ExtractDoc(doc)
}

// ExtractDoc is Extract for an already-parsed document.
func (e *Extractor) ExtractDoc(doc *goquery.Document) ([]map[string]string, error) {
	records := make([]map[string]string, 0)

	var firstErr error
	doc.FindMatcher(e.Container).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		rec, err := e.extractContainer(container)
		if err != nil {
			if e.Policy == BestEffort {
				return true
			}
			firstErr = err
			return false
		}
		records = append(records, rec)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

// extractContainer resolves every field against the container's re-rooted
// fragment and returns one complete record.
func (e *Extractor) extractContainer(container *goquery.Selection) (map[string]string, error) {
	scoped, err := Rescope(container)
	if err != nil {
		return nil, err
	}

	rec := make(map[string]string, len(e.Fields))
	for name, fs := range e.Fields {
		rec[name] = resolveField(scoped, fs)
	}
	return rec, nil
}

// resolveField runs one compiled spec against a re-rooted fragment and
// returns the extracted value, or "" when nothing matches.
func resolveField(scoped *goquery.Document, fs FieldSpec) string {
	match := scoped.FindMatcher(fs.Selector).First()
	if match.Length() == 0 {
		return ""
	}
	if fs.Attr != "" {
		val, _ := match.Attr(fs.Attr)
		return val
	}
	return JoinedText(match, " ")
}

// ExtractRecords is the package-level convenience form: compile once, extract
// one page.
func ExtractRecords(page, containerSelector string, fields map[string]string) ([]map[string]string, error) {
	ex, err := NewExtractor(containerSelector, fields)
	if err != nil {
		return nil, err
	}
	return ex.Extract(page)
}
