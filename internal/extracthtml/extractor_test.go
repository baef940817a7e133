package extracthtml

import (
	"errors"
	"reflect"
	"testing"
)

// TestExtractRecords_Basic runs the canonical example: one container, three
// fields mixing text and attribute extraction.
func TestExtractRecords_Basic(t *testing.T) {
	t.Parallel()

	html := `<div class='item'><a href='/x'>Title</a><span>$9</span></div>`
	recs, err := ExtractRecords(html, "div.item", map[string]string{
		"title": "a",
		"price": "span",
		"link":  "a@href",
	})
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}

	want := []map[string]string{
		{"title": "Title", "price": "$9", "link": "/x"},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("records: want %#v got %#v", want, recs)
	}
}

// TestExtractRecords_SchemaUniformity verifies every record carries exactly
// the mapping's keys, with "" for absent matches and absent attributes.
func TestExtractRecords_SchemaUniformity(t *testing.T) {
	t.Parallel()

	html := `
		<div class="rec"><span class="name">A</span><a href="/a">go</a></div>
		<div class="rec"><span class="name">B</span></div>
		<div class="rec"><a>no href here</a></div>
	`
	recs, err := ExtractRecords(html, ".rec", map[string]string{
		"name": ".name",
		"link": "a@href",
	})
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	for i, rec := range recs {
		if len(rec) != 2 {
			t.Fatalf("record %d: expected exactly 2 keys, got %#v", i, rec)
		}
		for _, key := range []string{"name", "link"} {
			if _, ok := rec[key]; !ok {
				t.Fatalf("record %d: missing key %q: %#v", i, key, rec)
			}
		}
	}

	if recs[0]["link"] != "/a" {
		t.Fatalf("record 0 link: want %q got %q", "/a", recs[0]["link"])
	}
	// No anchor at all vs anchor without the attribute: both are "".
	if recs[1]["link"] != "" || recs[2]["link"] != "" {
		t.Fatalf("expected empty links, got %#v", recs)
	}
	if recs[2]["name"] != "" {
		t.Fatalf("record 2 name: want empty, got %q", recs[2]["name"])
	}
}

// TestExtractRecords_ContainerScoping verifies field selectors resolve inside
// the current container only, even for bare tag selectors like "a".
func TestExtractRecords_ContainerScoping(t *testing.T) {
	t.Parallel()

	html := `
		<a href="/global">outside</a>
		<div class="item"><a href="/one">One</a></div>
		<div class="item"><a href="/two">Two</a></div>
	`
	recs, err := ExtractRecords(html, "div.item", map[string]string{"link": "a@href"})
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}
	want := []map[string]string{{"link": "/one"}, {"link": "/two"}}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("records: want %#v got %#v", want, recs)
	}
}

// TestExtractRecords_ContainerSelfMatch verifies a field selector can match
// the container element itself, not only strict descendants. This is a
// consequence of re-rooting the serialized subtree as its own fragment.
func TestExtractRecords_ContainerSelfMatch(t *testing.T) {
	t.Parallel()

	html := `<a class="offer" href="/one">One</a><a class="offer" href="/two">Two</a>`
	recs, err := ExtractRecords(html, "a.offer", map[string]string{"link": "a@href"})
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}
	want := []map[string]string{{"link": "/one"}, {"link": "/two"}}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("records: want %#v got %#v", want, recs)
	}
}

// TestExtractRecords_TextJoining verifies text extraction joins text nodes
// with single spaces and trims the result.
func TestExtractRecords_TextJoining(t *testing.T) {
	t.Parallel()

	html := `<div class="p"><span>  $9<b>.99</b> USD </span></div>`
	recs, err := ExtractRecords(html, "div.p", map[string]string{"price": "span"})
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	// Text nodes: "  $9", ".99", " USD " joined by " " then trimmed.
	want := "$9 .99  USD"
	if recs[0]["price"] != want {
		t.Fatalf("price: want %q got %q", want, recs[0]["price"])
	}
}

// TestExtractRecords_NoContainers verifies zero matches yield an empty (non
// nil) result, not an error.
func TestExtractRecords_NoContainers(t *testing.T) {
	t.Parallel()

	recs, err := ExtractRecords("<p>nothing here</p>", "div.item", map[string]string{"t": "a"})
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty slice, got %#v", recs)
	}
}

// TestExtractRecords_InvalidContainerSelector verifies the whole call fails
// fast on an uncompilable container selector.
func TestExtractRecords_InvalidContainerSelector(t *testing.T) {
	t.Parallel()

	_, err := ExtractRecords("<div></div>", "div[[[", map[string]string{"t": "a"})
	if err == nil {
		t.Fatalf("expected error for invalid container selector")
	}
	var selErr *SelectorError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected *SelectorError, got %T: %v", err, err)
	}
	if selErr.Field != "container" {
		t.Fatalf("expected container context, got %q", selErr.Field)
	}
}

// TestExtractRecords_Deterministic verifies repeated runs over identical
// inputs produce identical output.
func TestExtractRecords_Deterministic(t *testing.T) {
	t.Parallel()

	html := `
		<div class="item"><a href="/1">A</a><span>1</span></div>
		<div class="item"><a href="/2">B</a><span>2</span></div>
		<div class="item"><a href="/3">C</a><span>3</span></div>
	`
	fields := map[string]string{"title": "a", "price": "span", "link": "a@href"}

	first, err := ExtractRecords(html, "div.item", fields)
	if err != nil {
		t.Fatalf("ExtractRecords: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ExtractRecords(html, "div.item", fields)
		if err != nil {
			t.Fatalf("ExtractRecords run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %#v vs %#v", i, first, again)
		}
	}
}
