package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, s string) any {
	t.Helper()
	v, ok := Normalize(s)
	require.True(t, ok, "fixture must parse")
	return v
}

func TestSearcherFindAll(t *testing.T) {
	data := mustJSON(t, `{
		"included": [
			{"jobCard": {"jobId": "111", "title": "Backend Engineer"}},
			{"jobPostingCardWrapper": {"*jobPostingCard": "urn:li:fsd_jobPostingCard:(222,SEMANTIC_SEARCH)"}},
			{"ref": "urn:li:fsd_jobPostingCard:(333,JOBS_SEARCH)"}
		],
		"meta": {"count": 3}
	}`)

	shapes, err := Searcher{}.FindAll(data)
	require.NoError(t, err)

	var ids []string
	var kinds []Kind
	for _, sh := range shapes {
		ids = append(ids, sh.ID())
		kinds = append(kinds, sh.Kind())
	}
	assert.Equal(t, []string{"111", "222", "222", "333"}, ids)
	assert.Equal(t, []Kind{KindJobCard, KindPostingCard, KindURNRef, KindURNRef}, kinds)
}

func TestSearcherFindFirst(t *testing.T) {
	data := mustJSON(t, `{"a":[{"jobPosting":{"jobId":1,"title":"One"}},{"jobView":{"entityUrn":"urn:li:fs_normalized_jobPosting:2","title":"Two"}}]}`)

	sh, ok := Searcher{}.FindFirst(data, "2")
	require.True(t, ok)
	assert.Equal(t, KindJobPosting, sh.Kind())

	_, ok = Searcher{}.FindFirst(data, "3")
	assert.False(t, ok)
}

func nested(levels int, leaf any) any {
	v := leaf
	for i := 0; i < levels; i++ {
		if i%2 == 0 {
			v = map[string]any{"next": v}
		} else {
			v = []any{v}
		}
	}
	return v
}

func TestSearcherDepthBound(t *testing.T) {
	leaf := map[string]any{"jobPosting": map[string]any{"jobId": "42"}}

	t.Run("deep input terminates as not found", func(t *testing.T) {
		deep := nested(10000, leaf)

		shapes, err := Searcher{MaxDepth: 50}.FindAll(deep)
		assert.ErrorIs(t, err, ErrTooDeep)
		assert.Empty(t, shapes)

		_, ok := Searcher{MaxDepth: 50}.FindFirst(deep, "42")
		assert.False(t, ok)
	})

	t.Run("within bound is found", func(t *testing.T) {
		shallow := nested(40, leaf)
		sh, ok := Searcher{MaxDepth: 50}.FindFirst(shallow, "42")
		require.True(t, ok)
		assert.Equal(t, "42", sh.ID())
	})

	t.Run("default bound applies", func(t *testing.T) {
		_, err := Searcher{}.FindAll(nested(DefaultMaxDepth+5, leaf))
		assert.ErrorIs(t, err, ErrTooDeep)
	})
}

func TestIDFromURN(t *testing.T) {
	tests := map[string]string{
		"urn:li:fsd_jobPostingCard:(4226352667,SEMANTIC_SEARCH)": "4226352667",
		"urn:li:fsd_jobPosting:4226352667":                        "4226352667",
		"urn:li:company:abc":                                      "",
		"":                                                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, IDFromURN(in), in)
	}
	assert.Equal(t, "3901234567", IDFromURL("https://www.linkedin.com/jobs/view/go-developer-at-acme-3901234567?refId=x"))
	assert.Equal(t, "17", IDFromURL("/jobs/view/17/"))
}

func TestMapperShapes(t *testing.T) {
	m := Mapper{Now: func() time.Time { return fixedNow }}

	t.Run("job card with nested objects", func(t *testing.T) {
		data := mustJSON(t, `{
			"jobId": 7,
			"title": {"text": "Data Engineer"},
			"company": {"companyName": "Globex"},
			"location": {"displayName": "Austin, TX, Austin"},
			"description": {"text": "Pipelines."},
			"employmentType": "Full-time",
			"experienceLevel": "Associate",
			"listedAt": 1746088200000
		}`)
		rec := m.Map(JobCard{Data: data})
		assert.Equal(t, "7", rec.ExternalID)
		assert.Equal(t, "Data Engineer", rec.Title)
		assert.Equal(t, "Globex", rec.Company)
		assert.Equal(t, "Austin, TX", rec.Location)
		assert.Equal(t, "Pipelines.", rec.Description)
		assert.Equal(t, "Full-time", rec.EmploymentType)
		assert.Equal(t, "Associate", rec.ExperienceLevel)
		assert.Equal(t, time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC), rec.PostedDate)
		assert.Equal(t, "https://www.linkedin.com/jobs/view/7/", rec.URL)
		assert.NotEmpty(t, rec.RawData)
	})

	t.Run("posting card wrapper uses tracking url", func(t *testing.T) {
		data := mustJSON(t, `{"jobPostingCardWrapper": {
			"*jobPostingCard": "urn:li:fsd_jobPostingCard:(55,JOBS_SEARCH)",
			"jobTrackingData": {"navigationAction": {"actionTarget": "https://www.linkedin.com/jobs/view/55/?trk=x"}}
		}}`)
		rec := m.Map(PostingCard{Data: data.(map[string]any)})
		assert.Equal(t, "55", rec.ExternalID)
		assert.Equal(t, "https://www.linkedin.com/jobs/view/55/?trk=x", rec.URL)
	})

	t.Run("job page payload", func(t *testing.T) {
		data := mustJSON(t, `{
			"dashEntityUrn": "urn:li:fsd_jobPosting:9001",
			"title": "Platform Engineer",
			"formattedLocation": "Berlin, Germany",
			"description": {"text": "Kubernetes."},
			"companyDetails": {"company": "urn:li:fsd_company:1"},
			"listedAt": 1746088200000
		}`)
		rec := m.Map(JobPage{Data: data.(map[string]any)})
		assert.Equal(t, "9001", rec.ExternalID)
		assert.Equal(t, "Berlin, Germany", rec.Location)
		assert.Empty(t, rec.Company)
		assert.Equal(t, "job_page_json", string(rec.ExtractionMethod))
	})

	t.Run("malformed fragment keeps raw only", func(t *testing.T) {
		rec := m.Map(JobCard{Data: "not an object"})
		assert.Empty(t, rec.ExternalID)
		assert.Empty(t, rec.URL)
		assert.JSONEq(t, `"not an object"`, string(rec.RawData))
		assert.False(t, rec.HasIdentity())
	})

	t.Run("numbers keep full precision", func(t *testing.T) {
		rec := m.Map(JobPosting{Data: map[string]any{"jobId": json.Number("4226352667")}})
		assert.Equal(t, "4226352667", rec.ExternalID)
	})
}
