package extracthtml

import (
	"errors"
	"testing"
)

// TestCompileFieldSpec covers the spec grammar: zero '@' means text content,
// exactly one '@' splits selector from attribute, anything else fails.
func TestCompileFieldSpec(t *testing.T) {
	t.Parallel()

	fs, err := CompileFieldSpec("title", "h2.name")
	if err != nil {
		t.Fatalf("text spec: %v", err)
	}
	if fs.Attr != "" {
		t.Fatalf("text spec: expected empty Attr, got %q", fs.Attr)
	}

	fs, err = CompileFieldSpec("link", "a.buy@href")
	if err != nil {
		t.Fatalf("attr spec: %v", err)
	}
	if fs.Attr != "href" {
		t.Fatalf("attr spec: expected Attr %q, got %q", "href", fs.Attr)
	}
}

// TestCompileFieldSpec_Malformed verifies malformed specs always fail with a
// *SelectorError naming the field. The same fail-fast policy applies on every
// path; there is no silent-skip variant.
func TestCompileFieldSpec_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec string
	}{
		{name: "double_at", spec: "a@href@src"},
		{name: "empty_selector_before_at", spec: "@href"},
		{name: "invalid_css", spec: "div[[["},
		{name: "empty_spec", spec: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileFieldSpec("link", tc.spec)
			if err == nil {
				t.Fatalf("expected error for spec %q", tc.spec)
			}
			var selErr *SelectorError
			if !errors.As(err, &selErr) {
				t.Fatalf("expected *SelectorError, got %T: %v", err, err)
			}
			if selErr.Field != "link" {
				t.Fatalf("expected field %q in error, got %q", "link", selErr.Field)
			}
		})
	}
}

// TestCompileFieldMapping_FailFast verifies one bad spec fails the whole
// mapping; there are no partial mappings.
func TestCompileFieldMapping_FailFast(t *testing.T) {
	t.Parallel()

	fm, err := CompileFieldMapping(map[string]string{
		"good": "a",
		"bad":  "p[[[",
	})
	if err == nil {
		t.Fatalf("expected error, got mapping %#v", fm)
	}
	if fm != nil {
		t.Fatalf("expected nil mapping on error, got %#v", fm)
	}

	fm, err = CompileFieldMapping(map[string]string{
		"title": "h2",
		"link":  "a@href",
	})
	if err != nil {
		t.Fatalf("CompileFieldMapping: %v", err)
	}
	if len(fm) != 2 {
		t.Fatalf("expected 2 compiled entries, got %d", len(fm))
	}
}
