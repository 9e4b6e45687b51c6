package extract

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsync-engine/internal/domain"
)

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

const jsonPage = `<html><body>
<code id="bpr-guid-1001" style="display: none">{&quot;data&quot;:{&quot;jobPosting&quot;:{&quot;jobId&quot;:&quot;4226352667&quot;,&quot;title&quot;:&quot;Software Engineer&quot;,&quot;location&quot;:&quot;Remote&quot;,&quot;postedAt&quot;:&quot;2 days ago&quot;}}}</code>
</body></html>`

func TestExtractJSONScenario(t *testing.T) {
	e := New(DefaultRules(), nil)
	start := time.Now()

	res, err := e.ExtractString(jsonPage, "")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, domain.MethodJSON, res.Method)
	assert.Equal(t, "4226352667", rec.ExternalID)
	assert.Equal(t, "Software Engineer", rec.Title)
	assert.Equal(t, "Remote", rec.Location)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4226352667/", rec.URL)
	assert.WithinDuration(t, start.AddDate(0, 0, -2), rec.PostedDate, time.Minute)
	assert.Empty(t, rec.Company)
	assert.NotEmpty(t, rec.RawData)
}

func TestExtractedRecordSurvivesListingRoundTrip(t *testing.T) {
	res, err := New(DefaultRules(), nil).ExtractString(jsonPage, "")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]

	b, err := json.Marshal(domain.ToListing(rec))
	require.NoError(t, err)
	var l domain.Listing
	require.NoError(t, json.Unmarshal(b, &l))
	back := domain.FromListing(l)

	// outside the listing vocabulary
	rec.RawData, rec.ExtractionMethod, rec.ScrapedDate = nil, "", time.Time{}
	assert.Equal(t, rec, back)
}

func TestExtractJSONTargeted(t *testing.T) {
	e := New(DefaultRules(), nil, WithClock(func() time.Time { return fixedNow }))

	res, err := e.ExtractString(jsonPage, "4226352667")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, fixedNow.AddDate(0, 0, -2), res.Records[0].PostedDate)
	assert.Equal(t, fixedNow, res.Records[0].ScrapedDate)

	_, err = e.ExtractString(jsonPage, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

const domPage = `<html><body>
<div class="job-details-jobs-unified-top-card__job-title"><h1>  </h1></div>
<h1 data-test-id="job-title">Data Analyst</h1>
<div data-test-id="job-details-company-name"> Acme Co </div>
<div class="jobs-unified-top-card__bullet"><span>Chicago, IL</span></div>
<div class="jobs-description-content__text">SQL and dashboards.</div>
</body></html>`

func TestExtractDOMScenario(t *testing.T) {
	e := New(DefaultRules(), nil)

	res, err := e.ExtractString(domPage, "")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, domain.MethodDOM, res.Method)
	assert.Equal(t, "Data Analyst", rec.Title)
	assert.Equal(t, "Acme Co", rec.Company)
	assert.Equal(t, "Chicago, IL", rec.Location)
	assert.Equal(t, "SQL and dashboards.", rec.Description)
	assert.Empty(t, rec.ExternalID)
	assert.Empty(t, rec.URL)
}

func TestExtractDOMSeedsTarget(t *testing.T) {
	res, err := New(DefaultRules(), nil).ExtractString(domPage, "555")
	require.NoError(t, err)
	assert.Equal(t, "555", res.Records[0].ExternalID)
	assert.Equal(t, domain.JobURL("555"), res.Records[0].URL)
}

func TestExtractDOMNeedsTitleAndCompany(t *testing.T) {
	page := `<html><body><h1 data-test-id="job-title">Data Analyst</h1></body></html>`
	_, err := New(DefaultRules(), nil).ExtractString(page, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtractPanel(t *testing.T) {
	page := `<html><body>
<ul><li data-job-id="777">card</li></ul>
<section class="jobs-details">
  <h1>Site Reliability Engineer</h1>
  <span class="company-name">Initech</span>
  <div class="jobs-description">On call, sometimes.</div>
</section>
</body></html>`
	e := New(DefaultRules(), nil)

	res, err := e.ExtractString(page, "777")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodPanel, res.Method)
	rec := res.Records[0]
	assert.Equal(t, "777", rec.ExternalID)
	assert.Equal(t, "Site Reliability Engineer", rec.Title)
	assert.Equal(t, "Initech", rec.Company)
	assert.Equal(t, "On call, sometimes.", rec.Description)
}

func TestExtractStrategyOrder(t *testing.T) {
	rules := DefaultRules()
	rules.Strategies = []domain.Method{domain.MethodDOM, domain.MethodJSON}
	page := strings.Replace(domPage, "</body>", `<script type="application/json">{"jobPosting":{"jobId":"9","title":"From JSON"}}</script></body>`, 1)

	res, err := New(rules, nil).ExtractString(page, "")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodDOM, res.Method)

	res, err = New(DefaultRules(), nil).ExtractString(page, "")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodJSON, res.Method)
	assert.Equal(t, "From JSON", res.Records[0].Title)
}

const searchPage = `<html><body>
<code id="datalet-bpr-guid-1">{"included":[
  {"jobCard":{"*jobPostingCard":"urn:li:fsd_jobPostingCard:(101,JOBS_SEARCH)"}},
  {"jobPostingCardWrapper":{"*jobPostingCard":"urn:li:fsd_jobPostingCard:(102,JOBS_SEARCH)"}}
]}</code>
<code>not json at all</code>
<script type="application/json">{"elements":[{"jobCard":{"jobId":"101","title":"Dup"}}]}</script>
<ul class="scaffold-layout__list-container">
  <li class="jobs-search-results__list-item">
    <div data-job-id="101">
      <a class="job-card-list__title">Go Engineer</a>
      <span class="job-card-container__company-name">Hooli</span>
      <span class="job-card-container__metadata-item">Remote</span>
      <time class="job-card-container__listed-time">3 days ago</time>
    </div>
  </li>
  <li class="jobs-search-results__list-item">
    <div data-job-id="103">
      <a class="job-card-list__title">Rust Engineer</a>
      <span class="job-card-container__company-name">Pied Piper</span>
    </div>
  </li>
</ul>
</body></html>`

func TestLocateAndSearchAreIdempotent(t *testing.T) {
	e := New(DefaultRules(), nil)

	first := e.Search(mustDoc(t, searchPage))
	second := e.Search(mustDoc(t, searchPage))
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	doc := mustDoc(t, searchPage)
	a, b := e.Locate(doc), e.Locate(doc)
	require.Len(t, a, 3)
	for i := range a {
		assert.Same(t, a[i].Get(0), b[i].Get(0))
	}
}

func TestHarvest(t *testing.T) {
	e := New(DefaultRules(), nil, WithClock(func() time.Time { return fixedNow }))

	recs := e.Harvest(mustDoc(t, searchPage))
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ExternalID)
	}
	assert.Equal(t, []string{"101", "102", "103"}, ids)

	assert.Equal(t, "Dup", recs[0].Title, "json fragments fill before cards")
	assert.Equal(t, "Hooli", recs[0].Company, "card fills gaps")
	assert.Equal(t, "Pied Piper", recs[2].Company)
	assert.Equal(t, domain.MethodCard, recs[2].ExtractionMethod)
}

func TestDedup(t *testing.T) {
	in := []domain.JobRecord{
		{ExternalID: "1", Title: "A"},
		{ExternalID: "2"},
		{ExternalID: "1", Title: "B"},
		{Title: "Café Lead", Company: "Acme"},
		{Title: "cafe lead", Company: "ACME"},
	}
	out := Dedup(in)
	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "Café Lead", out[2].Title)
}
