package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobsync-engine/internal/domain"
)

var errMalformed = errors.New("malformed fragment")

// Mapper turns a recognized shape into a canonical record.
type Mapper struct {
	Now func() time.Time
	Log *slog.Logger
}

func (m Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return utcNow()
}

// Map never fails: a fragment that cannot be read yields a record carrying
// only its raw data.
func (m Mapper) Map(sh Shape) domain.JobRecord {
	rec, err := m.mapShape(sh)
	if err != nil {
		if m.Log != nil {
			m.Log.Warn("unreadable job fragment", "kind", sh.Kind(), "err", err)
		}
		return domain.JobRecord{}.WithRaw(sh.Raw())
	}
	if rec.URL == "" && rec.ExternalID != "" {
		rec.URL = domain.JobURL(rec.ExternalID)
	}
	return rec.WithRaw(sh.Raw())
}

func (m Mapper) mapShape(sh Shape) (domain.JobRecord, error) {
	switch s := sh.(type) {
	case JobCard:
		return m.mapJobCard(s)
	case PostingCard:
		return m.mapPostingCard(s)
	case JobPosting:
		return m.mapJobPosting(s)
	case JobPage:
		return m.mapJobPage(s)
	case URNRef:
		return domain.JobRecord{ExternalID: s.ID(), ExtractionMethod: domain.MethodJSON}, nil
	default:
		return domain.JobRecord{}, fmt.Errorf("unknown shape %T", sh)
	}
}

func (m Mapper) mapJobCard(s JobCard) (domain.JobRecord, error) {
	data, ok := asMap(s.Data)
	if !ok {
		return domain.JobRecord{}, errMalformed
	}
	rec := domain.JobRecord{ExternalID: s.ID(), ExtractionMethod: domain.MethodJSON}
	if inner, ok := asMap(data["jobPostingCard"]); ok {
		m.fillDetail(&rec, inner)
	}
	m.fillDetail(&rec, data)
	return rec, nil
}

func (m Mapper) mapPostingCard(s PostingCard) (domain.JobRecord, error) {
	rec := domain.JobRecord{ExternalID: s.ID(), ExtractionMethod: domain.MethodJSON}
	if w, ok := asMap(s.Data["jobPostingCardWrapper"]); ok {
		rec.URL = scalar(lookup(w, "jobTrackingData", "navigationAction", "actionTarget"))
	}
	if c, ok := asMap(s.Data["jobPostingCard"]); ok {
		m.fillDetail(&rec, c)
	}
	return rec, nil
}

func (m Mapper) mapJobPosting(s JobPosting) (domain.JobRecord, error) {
	data, ok := asMap(s.Data)
	if !ok {
		return domain.JobRecord{}, errMalformed
	}
	rec := domain.JobRecord{ExternalID: s.ID(), ExtractionMethod: domain.MethodJSON}
	m.fillDetail(&rec, data)
	return rec, nil
}

func (m Mapper) mapJobPage(s JobPage) (domain.JobRecord, error) {
	rec := domain.JobRecord{ExternalID: s.ID(), ExtractionMethod: domain.MethodJobPage}
	m.fillDetail(&rec, s.Data)
	if rec.Company == "" {
		if c, ok := asMap(lookup(s.Data, "companyDetails", "company")); ok {
			rec.Company = nameOf(c, "name", "companyName")
		}
	}
	return rec, nil
}

// fillDetail sets every still-empty field from the alternates in data.
func (m Mapper) fillDetail(rec *domain.JobRecord, data map[string]any) {
	setIfEmpty(&rec.Title, firstOf(data, textOf, "title", "jobPostingTitle"))
	setIfEmpty(&rec.Company, firstOf(data, func(v any) string { return nameOf(v, "name", "companyName") }, "company", "companyName"))
	if rec.Company == "" {
		setIfEmpty(&rec.Company, textOf(data["primaryDescription"]))
	}
	setIfEmpty(&rec.Location, NormalizeLocation(firstOf(data, func(v any) string { return nameOf(v, "name", "displayName") }, "location", "formattedLocation")))
	if rec.Location == "" {
		setIfEmpty(&rec.Location, NormalizeLocation(textOf(data["secondaryDescription"])))
	}
	setIfEmpty(&rec.Description, textOf(data["description"]))
	setIfEmpty(&rec.EmploymentType, firstOf(data, textOf, "employmentType", "formattedEmploymentStatus"))
	setIfEmpty(&rec.ExperienceLevel, firstOf(data, textOf, "experienceLevel", "formattedExperienceLevel"))
	setIfEmpty(&rec.SalaryInformation, firstOf(data, textOf, "salary", "formattedSalary", "salaryInsights"))
	setIfEmpty(&rec.Industry, firstOf(data, textOf, "industry", "formattedIndustries"))
	setIfEmpty(&rec.URL, firstOf(data, scalar, "url", "jobPostingUrl"))

	if rec.PostedDate.IsZero() {
		for _, k := range []string{"postedAt", "listedAt", "createdAt", "postedDate", "listedTime"} {
			if t, ok := ResolveDate(data[k], m.now()); ok {
				rec.PostedDate = t
				break
			}
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
