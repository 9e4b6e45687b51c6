package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobsync-engine/internal/domain"
)

// DOMScraper reads canonical fields straight from rendered markup.
type DOMScraper struct {
	Fields FieldSelectors
}

// firstText returns the text of the first element matched by the first
// selector that yields something non-empty.
func firstText(root *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		var got string
		root.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			got = CleanText(s.Text())
			return got == ""
		})
		if got != "" {
			return got
		}
	}
	return ""
}

// Scrape emits a record only when both title and company were found.
func (d DOMScraper) Scrape(root *goquery.Selection) (domain.JobRecord, bool) {
	rec := d.read(root)
	if rec.Title == "" || rec.Company == "" {
		return domain.JobRecord{}, false
	}
	rec.ExtractionMethod = domain.MethodDOM
	return rec, true
}

func (d DOMScraper) read(root *goquery.Selection) domain.JobRecord {
	return domain.JobRecord{
		Title:       firstText(root, d.Fields.Title),
		Company:     firstText(root, d.Fields.Company),
		Location:    NormalizeLocation(firstText(root, d.Fields.Location)),
		Description: firstText(root, d.Fields.Description),
	}
}

// PanelScraper reads the detail panel shown beside the result list.
type PanelScraper struct {
	Roots  []string
	Fields FieldSelectors
}

func (p PanelScraper) roots(targetID string) []string {
	roots := append([]string(nil), p.Roots...)
	if targetID != "" {
		roots = append(roots, fmt.Sprintf(`[data-job-id="%s"]`, strings.ReplaceAll(targetID, `"`, "")))
	}
	return roots
}

// Scrape finds the first panel root present and reads title, company and
// description from inside it. Either of title or company is enough.
func (p PanelScraper) Scrape(doc *goquery.Document, targetID string) (domain.JobRecord, bool) {
	var panel *goquery.Selection
	for _, sel := range p.roots(targetID) {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			panel = s
			break
		}
	}
	if panel == nil {
		return domain.JobRecord{}, false
	}

	rec := domain.JobRecord{
		Title:       firstText(panel, p.Fields.Title),
		Company:     firstText(panel, p.Fields.Company),
		Location:    NormalizeLocation(firstText(panel, p.Fields.Location)),
		Description: firstText(panel, p.Fields.Description),
	}
	if rec.Title == "" && rec.Company == "" {
		return domain.JobRecord{}, false
	}
	rec.ExtractionMethod = domain.MethodPanel
	return rec, true
}
