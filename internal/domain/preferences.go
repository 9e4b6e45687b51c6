package domain

import (
	"net/url"
	"strings"
)

type Preferences struct {
	AutoSearchEnabled bool     `json:"auto_search_enabled" yaml:"auto_search_enabled"`
	JobTitles         []string `json:"job_titles" yaml:"job_titles"`
	Locations         []string `json:"locations" yaml:"locations"`
	Industries        []string `json:"industries" yaml:"industries"`
}

const searchBase = "https://www.linkedin.com/jobs/search/"

// SearchURL builds the result-list URL for the first title/location pair.
// With no preferences it returns the generic jobs landing page.
func (p Preferences) SearchURL() string {
	q := url.Values{}
	if len(p.JobTitles) > 0 && strings.TrimSpace(p.JobTitles[0]) != "" {
		q.Set("keywords", strings.TrimSpace(p.JobTitles[0]))
	}
	if len(p.Locations) > 0 && strings.TrimSpace(p.Locations[0]) != "" {
		q.Set("location", strings.TrimSpace(p.Locations[0]))
	}
	if len(q) == 0 {
		return "https://www.linkedin.com/jobs/"
	}
	return searchBase + "?" + q.Encode()
}
