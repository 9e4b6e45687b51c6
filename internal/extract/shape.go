package extract

import (
	"sort"
	"strings"
)

// Kind names a recognized record shape.
type Kind string

const (
	KindJobCard     Kind = "job_card"
	KindPostingCard Kind = "posting_card"
	KindJobPosting  Kind = "job_posting"
	KindJobPage     Kind = "job_page"
	KindURNRef      Kind = "urn_ref"
)

const postingCardURN = "urn:li:fsd_jobPostingCard:"

// Shape is one recognized record-shaped fragment. The set of variants is
// closed; each has its own mapper.
type Shape interface {
	Kind() Kind
	// ID is the job id the fragment refers to, or "".
	ID() string
	// Raw is the fragment kept for diagnostics.
	Raw() any
	isShape()
}

// JobCard is the value found under a "jobCard" key.
type JobCard struct{ Data any }

// PostingCard is an object holding "jobPostingCard" or "jobPostingCardWrapper".
type PostingCard struct{ Data map[string]any }

// JobPosting is the detail object under "jobPosting", "jobView" or "jobDetails".
type JobPosting struct{ Data any }

// JobPage is a job-page payload identified by a jobPosting dashEntityUrn.
type JobPage struct{ Data map[string]any }

// URNRef is a bare posting-card URN string.
type URNRef struct{ URN string }

func (JobCard) Kind() Kind     { return KindJobCard }
func (PostingCard) Kind() Kind { return KindPostingCard }
func (JobPosting) Kind() Kind  { return KindJobPosting }
func (JobPage) Kind() Kind     { return KindJobPage }
func (URNRef) Kind() Kind      { return KindURNRef }

func (s JobCard) Raw() any     { return s.Data }
func (s PostingCard) Raw() any { return s.Data }
func (s JobPosting) Raw() any  { return s.Data }
func (s JobPage) Raw() any     { return s.Data }
func (s URNRef) Raw() any      { return map[string]any{"urn": s.URN} }

func (JobCard) isShape()     {}
func (PostingCard) isShape() {}
func (JobPosting) isShape()  {}
func (JobPage) isShape()     {}
func (URNRef) isShape()      {}

func (s JobCard) ID() string {
	m, ok := asMap(s.Data)
	if !ok {
		return ""
	}
	if id := jobIDOf(m); id != "" {
		return id
	}
	if inner, ok := asMap(m["jobPostingCard"]); ok {
		return jobIDOf(inner)
	}
	return ""
}

func (s PostingCard) ID() string {
	if w, ok := asMap(s.Data["jobPostingCardWrapper"]); ok {
		if id := IDFromURN(scalar(w["*jobPostingCard"])); id != "" {
			return id
		}
	}
	if c, ok := asMap(s.Data["jobPostingCard"]); ok {
		return jobIDOf(c)
	}
	if u := scalar(s.Data["jobPostingCard"]); u != "" {
		return IDFromURN(u)
	}
	return ""
}

func (s JobPosting) ID() string {
	if m, ok := asMap(s.Data); ok {
		return jobIDOf(m)
	}
	return ""
}

func (s JobPage) ID() string {
	if id := scalar(s.Data["jobPostingId"]); isDigits(id) {
		return id
	}
	u := scalar(s.Data["dashEntityUrn"])
	if id := IDFromURN(u); id != "" {
		return id
	}
	return reDigits.FindString(u)
}

func (s URNRef) ID() string { return IDFromURN(s.URN) }

// classify returns every shape m matches, in discriminant order. String
// members are visited in key order.
func classify(m map[string]any) []Shape {
	var out []Shape
	if v, ok := m["jobCard"]; ok && v != nil {
		out = append(out, JobCard{Data: v})
	}
	if truthy(m["jobPostingCard"]) || truthy(m["jobPostingCardWrapper"]) {
		out = append(out, PostingCard{Data: m})
	}
	if v := m["jobPosting"]; truthy(v) {
		if _, ok := asMap(v); ok {
			out = append(out, JobPosting{Data: v})
		}
	}
	for _, k := range []string{"jobView", "jobDetails"} {
		if v, ok := asMap(m[k]); ok {
			out = append(out, JobPosting{Data: v})
			break
		}
	}
	if u, ok := m["dashEntityUrn"].(string); ok && strings.Contains(u, "jobPosting") {
		out = append(out, JobPage{Data: m})
	}
	for _, k := range sortedKeys(m) {
		if s, ok := m[k].(string); ok && strings.Contains(s, postingCardURN) {
			out = append(out, URNRef{URN: s})
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
