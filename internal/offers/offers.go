// Package offers is a fixed-shape extractor for the shopping offer grid: a
// recurring tabular ad-listing pattern with a sentinel container and data
// rows carrying a grid-offer attribute.
//
// Unlike the generic extractor, selectors and the field set are hard-coded,
// and the failure policy is BestEffort per row: one malformed row among many
// is dropped, never fatal. That asymmetry with the generic FailFast paths is
// deliberate and load-bearing for scrape dumps of mixed quality.
package offers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"extract/internal/extracthtml"
)

// Fixed selectors for the offer grid markup.
var (
	sentinelSel = cascadia.MustCompile("#sh-osd__online-sellers-cont")
	rowSel      = cascadia.MustCompile(`tr[data-is-grid-offer="true"]`)
	sellerSel   = cascadia.MustCompile("a.b5ycib")
	priceSel    = cascadia.MustCompile("span.g9WBQb")
	shippingSel = cascadia.MustCompile("div.drzWO")
	linkSel     = cascadia.MustCompile("a.UxuaJe")
)

const (
	// newWindowSuffix is the accessibility string appended to seller links.
	newWindowSuffix = "Opens in a new window"

	// redirectPrefix marks relative search-redirect links that must be
	// rewritten against redirectOrigin. Any other href passes through.
	redirectPrefix = "/url?q="
	redirectOrigin = "https://www.google.com"
)

// Offer is one extracted ad row. Type is derived, not extracted: "Online"
// when a shipping-inclusive total price was found, "Local" otherwise.
type Offer struct {
	SellerName string `json:"seller_name"`
	OfferPrice string `json:"offer_price"`
	TotalPrice string `json:"total_price"`
	Link       string `json:"link"`
	Type       string `json:"type"`
}

// Extract parses page and returns all offers in document order.
//
// A page without the sentinel container is a normal "no offers" outcome and
// yields an empty slice, not an error.
func Extract(page string) ([]Offer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &extracthtml.HTMLParseError{Err: err}
	}
	return extractDoc(doc), nil
}

func extractDoc(doc *goquery.Document) []Offer {
	found := make([]Offer, 0)

	if doc.FindMatcher(sentinelSel).Length() == 0 {
		return found
	}

	// Rows are matched document-wide, not inside the sentinel; the sentinel
	// only gates whether the page is an offer page at all.
	doc.FindMatcher(rowSel).Each(func(_ int, row *goquery.Selection) {
		offer, ok := extractRow(row)
		if !ok {
			// BestEffort: drop the row, keep the page.
			return
		}
		found = append(found, offer)
	})
	return found
}

// extractRow resolves the four fixed fields against the row's re-rooted
// subtree. ok is false when the row cannot be re-rooted.
func extractRow(row *goquery.Selection) (offer Offer, ok bool) {
	scoped, err := extracthtml.Rescope(row)
	if err != nil {
		return Offer{}, false
	}

	offer = Offer{
		SellerName: sellerName(scoped),
		OfferPrice: firstText(scoped, priceSel),
		TotalPrice: firstText(scoped, shippingSel),
		Link:       link(scoped),
	}
	offer.Type = "Local"
	if offer.TotalPrice != "" {
		offer.Type = "Online"
	}
	return offer, true
}

// firstText returns the trimmed text of the first match, with text nodes
// concatenated directly (no separator; grid cells never rely on node
// boundaries for word breaks).
func firstText(scoped *goquery.Document, sel cascadia.Selector) string {
	match := scoped.FindMatcher(sel).First()
	if match.Length() == 0 {
		return ""
	}
	return extracthtml.JoinedText(match, "")
}

func sellerName(scoped *goquery.Document) string {
	text := firstText(scoped, sellerSel)
	return strings.TrimSpace(strings.ReplaceAll(text, newWindowSuffix, ""))
}

func link(scoped *goquery.Document) string {
	match := scoped.FindMatcher(linkSel).First()
	if match.Length() == 0 {
		return ""
	}
	href, _ := match.Attr("href")
	if strings.HasPrefix(href, redirectPrefix) {
		return redirectOrigin + href
	}
	return href
}
