package extracthtml

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Row and cell shapes are fixed for table extraction.
var (
	tableRowSel  = cascadia.MustCompile("tr")
	tableCellSel = cascadia.MustCompile("td, th")
)

// ExtractTable returns the cell text of every table matched by tableSelector
// as one string slice per row.
//
// Ordering is document order throughout: tables, then rows within each table,
// then cells within each row. Rows that yield zero cells are dropped; rows
// whose cells are all empty strings are kept (they still have cells).
//
// Errors:
//   - *SelectorError if tableSelector does not compile.
func ExtractTable(page, tableSelector string) ([][]string, error) {
	tableSel, err := cascadia.Compile(tableSelector)
	if err != nil {
		return nil, &SelectorError{Selector: tableSelector, Field: "table", Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &HTMLParseError{Err: err}
	}

	rows := make([][]string, 0)
	var scopeErr error
	doc.FindMatcher(tableSel).EachWithBreak(func(_ int, table *goquery.Selection) bool {
		scoped, err := Rescope(table)
		if err != nil {
			scopeErr = err
			return false
		}

		scoped.FindMatcher(tableRowSel).Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.FindMatcher(tableCellSel).Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, JoinedText(cell, " "))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		return true
	})
	if scopeErr != nil {
		return nil, scopeErr
	}
	return rows, nil
}
