package extracthtml

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DebugPrintSelector prints either outer HTML or joined text of matches for a
// selector. This is used by the command's "-selector" debug mode.
//
// Unlike the extraction paths, the selector here is compiled through goquery's
// lenient Find: a selector that does not compile simply matches nothing, which
// is the more useful behavior while iterating on selectors by hand.
func DebugPrintSelector(w io.Writer, page, selector string, textOnly bool) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return &HTMLParseError{Err: err}
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if textOnly {
			fmt.Fprintln(w, JoinedText(s, " "))
			fmt.Fprintln(w)
			return
		}
		out, err := goquery.OuterHtml(s)
		if err != nil {
			in, _ := s.Html()
			fmt.Fprintln(w, in)
			fmt.Fprintln(w)
			return
		}
		fmt.Fprintln(w, out)
		fmt.Fprintln(w)
	})
	return nil
}
