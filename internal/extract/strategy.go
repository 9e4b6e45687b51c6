package extract

import (
	"errors"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"jobsync-engine/internal/domain"
)

// Strategy is one way of getting records out of a page. ok is false when
// the strategy found nothing and the next one should be tried.
type Strategy interface {
	Name() domain.Method
	Extract(doc *goquery.Document, targetID string) (recs []domain.JobRecord, ok bool)
}

type jsonStrategy struct {
	locator  Locator
	searcher Searcher
	mapper   Mapper
	log      *slog.Logger
}

func (jsonStrategy) Name() domain.Method { return domain.MethodJSON }

func (s jsonStrategy) Extract(doc *goquery.Document, targetID string) ([]domain.JobRecord, bool) {
	var out []domain.JobRecord
	for i, c := range s.locator.Locate(doc) {
		data, ok := Normalize(c.Text())
		if !ok {
			s.log.Debug("container holds no json", "container", i)
			continue
		}

		if targetID != "" {
			sh, found := s.searcher.FindFirst(data, targetID)
			if !found {
				continue
			}
			if rec := s.mapper.Map(sh); rec.HasIdentity() {
				return []domain.JobRecord{rec}, true
			}
			continue
		}

		shapes, err := s.searcher.FindAll(data)
		if errors.Is(err, ErrTooDeep) {
			s.log.Warn("container skipped", "container", i, "err", err)
			continue
		}
		for _, sh := range shapes {
			if rec := s.mapper.Map(sh); rec.HasIdentity() {
				out = append(out, rec)
			}
		}
	}
	return out, len(out) > 0
}

type domStrategy struct {
	scraper DOMScraper
}

func (domStrategy) Name() domain.Method { return domain.MethodDOM }

func (s domStrategy) Extract(doc *goquery.Document, targetID string) ([]domain.JobRecord, bool) {
	rec, ok := s.scraper.Scrape(doc.Selection)
	if !ok {
		return nil, false
	}
	return []domain.JobRecord{seedID(rec, targetID)}, true
}

type panelStrategy struct {
	scraper PanelScraper
}

func (panelStrategy) Name() domain.Method { return domain.MethodPanel }

func (s panelStrategy) Extract(doc *goquery.Document, targetID string) ([]domain.JobRecord, bool) {
	rec, ok := s.scraper.Scrape(doc, targetID)
	if !ok {
		return nil, false
	}
	rec = seedID(rec, targetID)
	if !rec.HasIdentity() {
		return nil, false
	}
	return []domain.JobRecord{rec}, true
}

// seedID fills the id and url of a markup record when the caller knows
// which job the page shows.
func seedID(rec domain.JobRecord, targetID string) domain.JobRecord {
	if targetID == "" {
		return rec
	}
	rec.ExternalID = targetID
	if rec.URL == "" {
		rec.URL = domain.JobURL(targetID)
	}
	return rec
}
