package extracthtml

import (
	"strings"

	"github.com/andybalholm/cascadia"
)

// FieldSpec is one compiled extraction rule: a CSS selector plus an optional
// attribute name. Attr == "" means "extract text content".
//
// A FieldSpec is immutable once compiled and safe for concurrent use; the
// compiled selector is a pure matcher with no internal state.
type FieldSpec struct {
	Selector cascadia.Selector
	Attr     string
}

// FieldMapping maps field names to compiled specs. It is built once per call
// and shared read-only across all containers and documents of that call.
type FieldMapping map[string]FieldSpec

// CompileFieldSpec parses a textual field spec of the form "selector" or
// "selector@attribute" and compiles the selector.
//
// The grammar is strict: zero '@' means text extraction, exactly one '@'
// splits selector from attribute name, and anything else is rejected. All
// malformed specs fail compilation; there is no silent-skip path.
//
// Errors:
//   - *SelectorError naming the selector text and the field it was for.
func CompileFieldSpec(field, spec string) (FieldSpec, error) {
	selText, attr := spec, ""
	if i := strings.IndexByte(spec, '@'); i >= 0 {
		if strings.IndexByte(spec[i+1:], '@') >= 0 {
			return FieldSpec{}, &SelectorError{Selector: spec, Field: field, Err: errAmbiguousSpec}
		}
		selText, attr = spec[:i], spec[i+1:]
	}

	sel, err := cascadia.Compile(selText)
	if err != nil {
		return FieldSpec{}, &SelectorError{Selector: selText, Field: field, Err: err}
	}
	return FieldSpec{Selector: sel, Attr: attr}, nil
}

// CompileFieldMapping compiles every spec in fields.
//
// Fail-fast: the first spec that does not parse fails the whole call, so a
// successful mapping always has exactly one compiled entry per input key.
func CompileFieldMapping(fields map[string]string) (FieldMapping, error) {
	fm := make(FieldMapping, len(fields))
	for name, spec := range fields {
		fs, err := CompileFieldSpec(name, spec)
		if err != nil {
			return nil, err
		}
		fm[name] = fs
	}
	return fm, nil
}
