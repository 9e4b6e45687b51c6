package extract

import "jobsync-engine/internal/domain"

// DefaultMaxDepth bounds how deep the record searcher descends.
const DefaultMaxDepth = 50

// FieldSelectors holds ordered CSS alternatives per canonical field.
type FieldSelectors struct {
	Title       []string
	Company     []string
	Location    []string
	Description []string
}

// CardLayout describes one search-result card layout.
type CardLayout struct {
	Item     string
	Title    []string
	Company  []string
	Location []string
	Listed   []string
}

// Rules is the site-specific part of extraction. All lists are tried in order.
type Rules struct {
	Containers []string
	MaxDepth   int
	DOM        FieldSelectors
	PanelRoots []string
	Panel      FieldSelectors
	Cards      []CardLayout
	Strategies []domain.Method
}

func DefaultRules() Rules {
	return Rules{
		Containers: []string{
			`code[id*="bpr-guid"]`,
			`code[id*="datalet"]`,
			`script[type="application/json"]`,
			`code:not([class]):not([style])`,
		},
		MaxDepth: DefaultMaxDepth,
		DOM: FieldSelectors{
			Title: []string{
				`h1[data-test-id="job-title"]`,
				`.job-details-jobs-unified-top-card__job-title h1`,
				`.jobs-unified-top-card__job-title h1`,
				`h1.t-24`,
			},
			Company: []string{
				`[data-test-id="job-details-company-name"]`,
				`.job-details-jobs-unified-top-card__company-name a`,
				`.jobs-unified-top-card__company-name a`,
				`.jobs-poster__company-name`,
			},
			Location: []string{
				`[data-test-id="job-details-location"]`,
				`.job-details-jobs-unified-top-card__bullet span`,
				`.jobs-unified-top-card__bullet span`,
				`.jobs-poster__location`,
			},
			Description: []string{
				`[data-test-id="job-details-description"]`,
				`.jobs-description-content__text`,
				`.jobs-box__html-content`,
				`.description`,
			},
		},
		PanelRoots: []string{
			`.jobs-search__job-details`,
			`.job-details-container`,
			`.jobs-details`,
		},
		Panel: FieldSelectors{
			Title:       []string{`h1`, `.job-title`, `[data-test="job-title"]`},
			Company:     []string{`.company-name`, `[data-test="company-name"]`, `.jobs-poster__company-name`},
			Description: []string{`.job-description`, `.jobs-description`, `[data-test="job-description"]`},
		},
		Cards: []CardLayout{
			{
				Item:     `.jobs-search-results__list-item [data-job-id], li[data-job-id]`,
				Title:    []string{`.job-card-list__title`},
				Company:  []string{`.job-card-container__company-name`},
				Location: []string{`.job-card-container__metadata-item`},
				Listed:   []string{`.job-card-container__listed-time`},
			},
			{
				Item:     `.base-card, .base-search-card`,
				Title:    []string{`.base-search-card__title`},
				Company:  []string{`.base-search-card__subtitle`},
				Location: []string{`.job-search-card__location`},
				Listed:   []string{`time`},
			},
		},
		Strategies: []domain.Method{domain.MethodJSON, domain.MethodDOM, domain.MethodPanel},
	}
}

// withDefaults fills empty sections from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if len(r.Containers) == 0 {
		r.Containers = d.Containers
	}
	if r.MaxDepth <= 0 {
		r.MaxDepth = d.MaxDepth
	}
	r.DOM = r.DOM.or(d.DOM)
	if len(r.PanelRoots) == 0 {
		r.PanelRoots = d.PanelRoots
	}
	r.Panel = r.Panel.or(d.Panel)
	if len(r.Cards) == 0 {
		r.Cards = d.Cards
	}
	if len(r.Strategies) == 0 {
		r.Strategies = d.Strategies
	}
	return r
}

func (f FieldSelectors) or(d FieldSelectors) FieldSelectors {
	if len(f.Title) == 0 {
		f.Title = d.Title
	}
	if len(f.Company) == 0 {
		f.Company = d.Company
	}
	if len(f.Location) == 0 {
		f.Location = d.Location
	}
	if len(f.Description) == 0 {
		f.Description = d.Description
	}
	return f
}
