package extracthtml

import (
	"errors"
	"fmt"
)

// errAmbiguousSpec marks a field spec containing more than one '@', which
// cannot be split unambiguously into selector and attribute.
var errAmbiguousSpec = errors.New("field spec contains more than one '@'")

// SelectorError reports a CSS selector (or field spec) that failed to compile.
//
// Field carries the context the selector was compiled for: a field name, or
// one of the fixed contexts "container" / "table".
type SelectorError struct {
	Selector string
	Field    string
	Err      error
}

func (e *SelectorError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid selector %q: %v", e.Selector, e.Err)
	}
	return fmt.Sprintf("invalid selector %q for %q: %v", e.Selector, e.Field, e.Err)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// HTMLParseError reports a fatal document-construction failure.
//
// The underlying parser is browser-grade tolerant and builds a best-effort
// tree for malformed markup, so in practice this fires only on reader-level
// failures. The type exists so callers can distinguish the slot anyway.
type HTMLParseError struct {
	Err error
}

func (e *HTMLParseError) Error() string { return fmt.Sprintf("parse html: %v", e.Err) }

func (e *HTMLParseError) Unwrap() error { return e.Err }
