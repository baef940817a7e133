package extracthtml

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Rescope re-serializes the first matched element's subtree and re-parses it
// as an independent fragment.
//
// This is the scoping step for per-container field resolution: the fragment's
// tree contains the container element itself plus its descendants and nothing
// else, so a field selector can match the container element as well as any
// descendant. A plain descendant Find would exclude the container itself,
// which changes semantics for mappings like {"link": "a@href"} where the
// container IS the anchor.
//
// The re-serialize/re-parse cost is the price of that semantic; keeping it
// behind this single helper keeps it visible and poolable.
func Rescope(sel *goquery.Selection) (*goquery.Document, error) {
	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil, fmt.Errorf("serialize subtree: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &HTMLParseError{Err: err}
	}
	return doc, nil
}

// JoinedText returns the text nodes under the first element of s, joined by
// sep and trimmed of leading/trailing whitespace.
//
// Each text node contributes exactly one part; no per-part trimming or
// whitespace collapsing happens beyond the outer trim.
func JoinedText(s *goquery.Selection, sep string) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var parts []string
	collectText(s.Nodes[0], &parts)
	return strings.TrimSpace(strings.Join(parts, sep))
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
