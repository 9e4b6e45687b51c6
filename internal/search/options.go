package search

import (
	"time"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/domain"
)

// Options is one search run's knobs, usually taken from config.
type Options struct {
	Prefs           domain.Preferences
	UseBackendPrefs bool
	// StartURL overrides the URL built from Prefs.
	StartURL string

	ListSelector string
	MaxScrolls   int
	ScrollDelay  time.Duration
	DetailDelay  time.Duration
	// ReadyTimeout bounds the wait for a job page to render its details.
	ReadyTimeout time.Duration
	// MaxDetails caps detail page visits per run; 0 means no cap.
	MaxDetails int
}

func OptionsFromConfig(cfg config.Config) Options {
	s := cfg.Search
	return Options{
		Prefs: domain.Preferences{
			JobTitles:  s.JobTitles,
			Locations:  s.Locations,
			Industries: s.Industries,
		},
		UseBackendPrefs: s.UseBackendPrefs,
		StartURL:        s.StartURL,
		ListSelector:    s.ListSelector,
		MaxScrolls:      s.MaxScrolls,
		ScrollDelay:     time.Duration(s.ScrollDelayMs) * time.Millisecond,
		DetailDelay:     time.Duration(s.DetailDelayMs) * time.Millisecond,
		ReadyTimeout:    time.Duration(s.ReadyTimeoutMs) * time.Millisecond,
		MaxDetails:      s.MaxDetails,
	}
}
