package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}

// NormalizeAndValidate returns a cleaned copy with hard errors and soft
// warnings. Selector lists keep their case; they are CSS.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Search.JobTitles = trimList(out.Search.JobTitles)
	out.Search.Locations = trimList(out.Search.Locations)
	out.Search.Industries = trimList(out.Search.Industries)
	out.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(out.Backend.BaseURL), "/")
	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))

	var strategies []string
	for _, s := range trimList(out.Extraction.Strategies) {
		strategies = append(strategies, strings.ToLower(s))
	}
	out.Extraction.Strategies = strategies

	if err := Validate(out); err != nil {
		for _, line := range strings.Split(err.Error(), "\n- ")[1:] {
			res.addErr("%s", line)
		}
	}

	if out.Search.DetailDelayMs > 0 && out.Search.DetailDelayMs < 500 {
		res.addWarn("search.detail_delay_ms is very low (%d) and may get the session throttled.", out.Search.DetailDelayMs)
	}
	if out.Search.MaxDetails == 0 {
		res.addWarn("search.max_details is 0; every new job on the result page will be opened.")
	}
	if len(out.Search.JobTitles) == 0 && !out.Search.UseBackendPrefs && out.Search.StartURL == "" {
		res.addWarn("no job titles, start_url or backend preferences; searches open the generic jobs page.")
	}
	if out.Search.Submit && strings.TrimSpace(out.Backend.Email) == "" {
		res.addWarn("search.submit is on but backend.email is empty; sign in before running a search.")
	}
	if out.Extraction.MaxDepth > 200 {
		res.addWarn("extraction.max_depth is %d; deep walks over hostile pages get slow.", out.Extraction.MaxDepth)
	}

	return out, res
}
