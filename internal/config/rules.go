package config

import (
	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/extract"
)

// Rules converts the extraction section for the extractor. Empty
// sections fall back to the built-in rules inside extract.New.
func (e Extraction) Rules() extract.Rules {
	r := extract.Rules{
		Containers: e.Containers,
		MaxDepth:   e.MaxDepth,
		DOM:        e.DOM.fields(),
		PanelRoots: e.PanelRoots,
		Panel:      e.Panel.fields(),
	}
	for _, c := range e.Cards {
		r.Cards = append(r.Cards, extract.CardLayout{
			Item:     c.Item,
			Title:    c.Title,
			Company:  c.Company,
			Location: c.Location,
			Listed:   c.Listed,
		})
	}
	for _, s := range e.Strategies {
		r.Strategies = append(r.Strategies, domain.Method(s))
	}
	return r
}

func (s Selectors) fields() extract.FieldSelectors {
	return extract.FieldSelectors{
		Title:       s.Title,
		Company:     s.Company,
		Location:    s.Location,
		Description: s.Description,
	}
}
