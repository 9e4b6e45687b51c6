// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SelectorsFile is the optional selectors.yml kept next to config.yml so
// site markup changes can be tracked without touching the main config.
type SelectorsFile struct {
	Extraction Extraction `yaml:"extraction"`
}

// OverlaySelectors replaces each extraction list the file sets.
func OverlaySelectors(cfg *Config, selectorsPath string) error {
	b, err := os.ReadFile(selectorsPath)
	if err != nil {
		// Missing selectors file should not kill startup
		return nil
	}

	var sf SelectorsFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return err
	}

	x := sf.Extraction
	if len(x.Containers) > 0 {
		cfg.Extraction.Containers = x.Containers
	}
	if x.MaxDepth > 0 {
		cfg.Extraction.MaxDepth = x.MaxDepth
	}
	overlaySelectors(&cfg.Extraction.DOM, x.DOM)
	if len(x.PanelRoots) > 0 {
		cfg.Extraction.PanelRoots = x.PanelRoots
	}
	overlaySelectors(&cfg.Extraction.Panel, x.Panel)
	if len(x.Cards) > 0 {
		cfg.Extraction.Cards = x.Cards
	}
	if len(x.Strategies) > 0 {
		cfg.Extraction.Strategies = x.Strategies
	}
	return nil
}

func overlaySelectors(dst *Selectors, src Selectors) {
	if len(src.Title) > 0 {
		dst.Title = src.Title
	}
	if len(src.Company) > 0 {
		dst.Company = src.Company
	}
	if len(src.Location) > 0 {
		dst.Location = src.Location
	}
	if len(src.Description) > 0 {
		dst.Description = src.Description
	}
}
