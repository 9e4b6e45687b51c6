package extract

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobsync-engine/internal/domain"
)

// CardParser reads the job cards of a search-result list.
type CardParser struct {
	Layouts []CardLayout
	Now     func() time.Time
}

// Parse returns one record per card that carries a job id, first layout
// first, each id once.
func (c CardParser) Parse(doc *goquery.Document) []domain.JobRecord {
	now := utcNow()
	if c.Now != nil {
		now = c.Now()
	}

	seen := map[string]bool{}
	var out []domain.JobRecord
	for _, lay := range c.Layouts {
		doc.Find(lay.Item).Each(func(_ int, card *goquery.Selection) {
			id := cardID(card)
			if id == "" || seen[id] {
				return
			}
			seen[id] = true

			rec := domain.JobRecord{
				ExternalID:       id,
				Title:            firstText(card, lay.Title),
				Company:          firstText(card, lay.Company),
				Location:         NormalizeLocation(firstText(card, lay.Location)),
				URL:              domain.JobURL(id),
				ExtractionMethod: domain.MethodCard,
				ScrapedDate:      now,
			}
			rec.PostedDate = cardListed(card, lay.Listed, now)
			out = append(out, rec)
		})
	}
	return out
}

func cardID(card *goquery.Selection) string {
	if v, ok := card.Attr("data-job-id"); ok && isDigits(v) {
		return v
	}
	if v, ok := card.Attr("data-entity-urn"); ok {
		if id := IDFromURN(v); id != "" {
			return id
		}
	}
	var id string
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		id = IDFromURL(href)
		return id == ""
	})
	return id
}

// cardListed prefers a machine-readable datetime attribute over the
// relative text.
func cardListed(card *goquery.Selection, selectors []string, now time.Time) time.Time {
	for _, sel := range selectors {
		el := card.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if dt, ok := el.Attr("datetime"); ok {
			if t, ok := ResolveDate(dt, now); ok {
				return t
			}
		}
		return ResolveRelative(CleanText(el.Text()), now)
	}
	return ResolveRelative("", now)
}
