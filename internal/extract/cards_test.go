package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardParserPublicLayout(t *testing.T) {
	doc := mustDoc(t, `
<ul>
  <li>
    <div class="base-card" data-entity-urn="urn:li:jobPosting:3901234567">
      <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/staff-engineer-at-example-co-3901234567"></a>
      <h3 class="base-search-card__title">Staff Engineer</h3>
      <h4 class="base-search-card__subtitle">Example Co</h4>
      <span class="job-search-card__location">Remote</span>
      <time datetime="2024-01-10">2 weeks ago</time>
    </div>
  </li>
  <li><div class="base-card"><h3 class="base-search-card__title">No link</h3></div></li>
</ul>`)

	recs := CardParser{Layouts: DefaultRules().Cards, Now: func() time.Time { return fixedNow }}.Parse(doc)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "3901234567", r.ExternalID)
	assert.Equal(t, "Staff Engineer", r.Title)
	assert.Equal(t, "Example Co", r.Company)
	assert.Equal(t, "Remote", r.Location)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), r.PostedDate)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/3901234567/", r.URL)
	assert.Equal(t, fixedNow, r.ScrapedDate)
}

func TestCardParserRelativeListedTime(t *testing.T) {
	doc := mustDoc(t, `<ul><li class="jobs-search-results__list-item"><div data-job-id="12">
<a class="job-card-list__title">QA Engineer</a>
<time class="job-card-container__listed-time">1 week ago</time>
</div></li></ul>`)

	recs := CardParser{Layouts: DefaultRules().Cards, Now: func() time.Time { return fixedNow }}.Parse(doc)
	require.Len(t, recs, 1)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), recs[0].PostedDate)
}
