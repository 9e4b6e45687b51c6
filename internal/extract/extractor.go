package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobsync-engine/internal/domain"
)

// ErrNotFound means no strategy produced a record.
var ErrNotFound = errors.New("extract: no job data found")

// Extractor runs the ordered strategies over a page.
type Extractor struct {
	rules      Rules
	locator    Locator
	searcher   Searcher
	mapper     Mapper
	cards      CardParser
	strategies []Strategy
	log        *slog.Logger
	now        func() time.Time
}

type Option func(*Extractor)

// WithClock overrides the time source used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func New(rules Rules, log *slog.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	e := &Extractor{
		rules: rules.withDefaults(),
		log:   log.With("component", "extract"),
		now:   utcNow,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.locator = Locator{Selectors: e.rules.Containers}
	e.searcher = Searcher{MaxDepth: e.rules.MaxDepth}
	e.mapper = Mapper{Now: e.now, Log: e.log}
	e.cards = CardParser{Layouts: e.rules.Cards, Now: e.now}

	for _, name := range e.rules.Strategies {
		switch name {
		case domain.MethodJSON:
			e.strategies = append(e.strategies, jsonStrategy{locator: e.locator, searcher: e.searcher, mapper: e.mapper, log: e.log})
		case domain.MethodDOM:
			e.strategies = append(e.strategies, domStrategy{scraper: DOMScraper{Fields: e.rules.DOM}})
		case domain.MethodPanel:
			e.strategies = append(e.strategies, panelStrategy{scraper: PanelScraper{Roots: e.rules.PanelRoots, Fields: e.rules.Panel}})
		default:
			e.log.Warn("unknown strategy ignored", "name", name)
		}
	}
	return e
}

// Result is the outcome of one page extraction.
type Result struct {
	Records []domain.JobRecord `json:"records"`
	Method  domain.Method      `json:"method"`
}

// ReadySelectors are the CSS groups that must all match before a job
// page is worth reading: the DOM title and company alternatives.
func (e *Extractor) ReadySelectors() []string {
	var out []string
	for _, alts := range [][]string{e.rules.DOM.Title, e.rules.DOM.Company} {
		if len(alts) > 0 {
			out = append(out, strings.Join(alts, ", "))
		}
	}
	return out
}

// Extract tries each strategy in order and returns the first that yields
// records. targetID narrows the json strategy to one job and seeds the id
// of markup records.
func (e *Extractor) Extract(doc *goquery.Document, targetID string) (Result, bool) {
	for _, s := range e.strategies {
		recs, ok := s.Extract(doc, targetID)
		if !ok {
			e.log.Debug("strategy found nothing", "strategy", s.Name(), "job_id", targetID)
			continue
		}
		scraped := e.now()
		for i := range recs {
			if recs[i].ScrapedDate.IsZero() {
				recs[i].ScrapedDate = scraped
			}
		}
		return Result{Records: Dedup(recs), Method: s.Name()}, true
	}
	return Result{}, false
}

// ExtractHTML parses r and runs Extract.
func (e *Extractor) ExtractHTML(r io.Reader, targetID string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse html: %w", err)
	}
	res, ok := e.Extract(doc, targetID)
	if !ok {
		return Result{}, ErrNotFound
	}
	return res, nil
}

// ExtractString is ExtractHTML over an in-memory page.
func (e *Extractor) ExtractString(page, targetID string) (Result, error) {
	return e.ExtractHTML(strings.NewReader(page), targetID)
}

// Harvest collects every job reference on a result page: embedded data
// first, then the visible cards. Card fields fill gaps of json records.
func (e *Extractor) Harvest(doc *goquery.Document) []domain.JobRecord {
	var all []domain.JobRecord
	for i, c := range e.locator.Locate(doc) {
		data, ok := Normalize(c.Text())
		if !ok {
			continue
		}
		shapes, err := e.searcher.FindAll(data)
		if err != nil {
			e.log.Warn("container skipped", "container", i, "err", err)
			continue
		}
		for _, sh := range shapes {
			rec := e.mapper.Map(sh)
			if rec.ExternalID != "" {
				all = append(all, rec)
			}
		}
	}
	all = append(all, e.cards.Parse(doc)...)
	return Merge(all)
}

// Locate exposes the container locator, mostly for diagnostics.
func (e *Extractor) Locate(doc *goquery.Document) []*goquery.Selection {
	return e.locator.Locate(doc)
}

// Search runs the record searcher over the data of every container.
func (e *Extractor) Search(doc *goquery.Document) []Shape {
	var out []Shape
	for _, c := range e.locator.Locate(doc) {
		data, ok := Normalize(c.Text())
		if !ok {
			continue
		}
		shapes, err := e.searcher.FindAll(data)
		if err != nil {
			continue
		}
		out = append(out, shapes...)
	}
	return out
}
