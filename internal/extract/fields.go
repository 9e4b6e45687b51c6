package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	reURNPair  = regexp.MustCompile(`\((\d+),`)
	reURNTail  = regexp.MustCompile(`:(\d+)$`)
	reDigits   = regexp.MustCompile(`\d+`)
	reJobsView = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)`)
)

// IDFromURN pulls the numeric job id out of a URN such as
// "urn:li:fsd_jobPostingCard:(4226352667,SEMANTIC_SEARCH)" or
// "urn:li:fsd_jobPosting:4226352667".
func IDFromURN(urn string) string {
	if m := reURNPair.FindStringSubmatch(urn); m != nil {
		return m[1]
	}
	if m := reURNTail.FindStringSubmatch(strings.TrimSpace(urn)); m != nil {
		return m[1]
	}
	return ""
}

// IDFromURL returns the job id of a /jobs/view/ URL.
func IDFromURL(u string) string {
	if m := reJobsView.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// scalar renders strings and numbers; everything else is absent.
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// textOf accepts a plain string or an object with a "text" member.
func textOf(v any) string {
	if s := scalar(v); s != "" {
		return s
	}
	if m, ok := asMap(v); ok {
		return scalar(m["text"])
	}
	return ""
}

// nameOf accepts a plain string or an object carrying one of keys.
func nameOf(v any, keys ...string) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	m, ok := asMap(v)
	if !ok {
		return ""
	}
	for _, k := range keys {
		if s := scalar(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// lookup walks a dotted path of object keys.
func lookup(m map[string]any, path ...string) any {
	var cur any = m
	for _, k := range path {
		obj, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

// firstOf returns the first non-empty result of f over keys of m.
func firstOf(m map[string]any, f func(any) string, keys ...string) string {
	for _, k := range keys {
		if s := f(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// jobIDOf tries the id alternates in the order the site data uses them.
func jobIDOf(m map[string]any) string {
	if s := firstOf(m, scalar, "jobId", "id", "jobPostingId"); s != "" && isDigits(s) {
		return s
	}
	for _, k := range []string{"entityUrn", "dashEntityUrn", "urn", "*jobPostingCard", "*jobPosting", "jobPostingUrn"} {
		u := scalar(m[k])
		if u == "" {
			continue
		}
		if id := IDFromURN(u); id != "" {
			return id
		}
		if k == "entityUrn" || k == "dashEntityUrn" {
			if d := reDigits.FindString(u); d != "" {
				return d
			}
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
