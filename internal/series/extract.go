package series

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTableSelector locates the published index table on the source page.
const DefaultTableSelector = "div#result-table-collapse table"

// ExtractTable reads the first table matching selector from HTML markup and returns its
// header cells (uppercased) followed by the text of every data row.
func ExtractTable(r io.Reader, selector string) ([][]string, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no markup to parse", ErrStructuralParse)
	}
	if selector == "" {
		selector = DefaultTableSelector
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrStructuralParse, err)
	}
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %q not found", ErrStructuralParse, selector)
	}

	var header []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		header = append(header, strings.ToUpper(strings.TrimSpace(th.Text())))
	})
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: table has no header cells", ErrStructuralParse)
	}
	header[0] = ColumnYear

	rows := [][]string{header}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows, nil
}
