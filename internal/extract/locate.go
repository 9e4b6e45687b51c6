package extract

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Locator finds elements that may carry embedded page data.
type Locator struct {
	Selectors []string
}

// Locate returns candidates in selector order, each element at most once.
func (l Locator) Locate(doc *goquery.Document) []*goquery.Selection {
	seen := map[*html.Node]bool{}
	var out []*goquery.Selection
	for _, sel := range l.Selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			n := s.Get(0)
			if n == nil || seen[n] {
				return
			}
			seen[n] = true
			out = append(out, s)
		})
	}
	return out
}
