package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// offerPage builds a minimal offer-grid page with one online row and one
// local row (no shipping-inclusive total).
const offerPage = `<html><body>
<div id="sh-osd__online-sellers-cont">
  <table>
    <tr data-is-grid-offer="true">
      <td><a class="b5ycib" href="#">Shop AOpens in a new window</a></td>
      <td><span class="g9WBQb">$10.00</span></td>
      <td><div class="drzWO">$12.50</div></td>
      <td><a class="UxuaJe" href="/url?q=http://a.example/item">view</a></td>
    </tr>
    <tr data-is-grid-offer="true">
      <td><a class="b5ycib" href="#">Shop B</a></td>
      <td><span class="g9WBQb">$9.00</span></td>
      <td><a class="UxuaJe" href="http://b.example/item">view</a></td>
    </tr>
  </table>
</div>
</body></html>`

type offerJSON struct {
	SellerName string `json:"seller_name"`
	OfferPrice string `json:"offer_price"`
	TotalPrice string `json:"total_price"`
	Link       string `json:"link"`
	Type       string `json:"type"`
}

// TestRun_StdinOffers verifies the stdin happy path: JSON array of offers with
// derived type and rewritten redirect links.
func TestRun_StdinOffers(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(
		context.Background(),
		nil,
		bytes.NewBufferString(offerPage),
		&stdout,
		&stderr,
		http.DefaultClient,
	)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	var got []offerJSON
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not valid json: %v; out=%s", err, stdout.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 offers, got %d: %#v", len(got), got)
	}

	online := got[0]
	if online.SellerName != "Shop A" || online.Type != "Online" {
		t.Fatalf("unexpected online offer: %#v", online)
	}
	if online.Link != "https://www.google.com/url?q=http://a.example/item" {
		t.Fatalf("redirect link not rewritten: %q", online.Link)
	}

	local := got[1]
	if local.Type != "Local" || local.TotalPrice != "" {
		t.Fatalf("unexpected local offer: %#v", local)
	}
	if local.Link != "http://b.example/item" {
		t.Fatalf("absolute link must pass through: %q", local.Link)
	}
}

// TestRun_StdinNoSentinel verifies a non-offer page yields an empty array,
// exit 0.
func TestRun_StdinNoSentinel(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(
		context.Background(),
		nil,
		bytes.NewBufferString(`<html><body><p>nothing here</p></body></html>`),
		&stdout,
		&stderr,
		http.DefaultClient,
	)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	var got []offerJSON
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not valid json: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no offers, got %#v", got)
	}
}

// TestRun_DirModeTagged verifies directory mode prints a JSON object keyed by
// file name, including files with zero offers.
func TestRun_DirModeTagged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"page1.html": offerPage,
		"page2.html": `<html><body><p>no offers</p></body></html>`,
	}
	for name, html := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(html), 0o600); err != nil {
			t.Fatalf("write page: %v", err)
		}
	}

	var stdout, stderr bytes.Buffer
	code := run(
		context.Background(),
		[]string{"-dir", dir},
		bytes.NewBuffer(nil),
		&stdout,
		&stderr,
		http.DefaultClient,
	)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	var got map[string][]offerJSON
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not valid json: %v; out=%s", err, stdout.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 keys, got %#v", got)
	}
	if len(got["page1.html"]) != 2 {
		t.Fatalf("expected 2 offers for page1.html, got %#v", got["page1.html"])
	}
	if len(got["page2.html"]) != 0 {
		t.Fatalf("expected 0 offers for page2.html, got %#v", got["page2.html"])
	}
}

// TestRun_DBSink verifies offers land in the sqlite sink with file provenance.
func TestRun_DBSink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "p.html"), []byte(offerPage), 0o600); err != nil {
		t.Fatalf("write page: %v", err)
	}
	dbPath := filepath.Join(t.TempDir(), "offers.db")

	var stdout, stderr bytes.Buffer
	code := run(
		context.Background(),
		[]string{"-dir", dir, "-db", "kind=sqlite,dsn=" + dbPath + ",table=offers"},
		bytes.NewBuffer(nil),
		&stdout,
		&stderr,
		http.DefaultClient,
	)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM offers WHERE source = 'p.html'").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 persisted offers, got %d", n)
	}
}

// TestRun_UsageErrors verifies configuration mistakes exit 2.
func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"-definitely-not-a-flag"},
		{"-db", "kind=sqlite"},
		{"-metrics-backend", "statsd"},
	}
	for _, args := range cases {
		var stdout, stderr bytes.Buffer
		code := run(
			context.Background(),
			args,
			bytes.NewBufferString("<p>x</p>"),
			&stdout,
			&stderr,
			http.DefaultClient,
		)
		if code != 2 {
			t.Fatalf("args %v: expected exit 2, got %d; stderr=%s", args, code, stderr.String())
		}
	}
}
