package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Method tags which extraction path produced a record.
type Method string

const (
	MethodJSON    Method = "json"
	MethodJobPage Method = "job_page_json"
	MethodDOM     Method = "dom"
	MethodPanel   Method = "panel"
	MethodCard    Method = "card"
)

// JobRecord is the canonical job shape produced by extraction. Optional
// fields are left at their zero value when the source did not carry them.
type JobRecord struct {
	ExternalID        string    `json:"external_id,omitempty"`
	Title             string    `json:"title,omitempty"`
	Company           string    `json:"company,omitempty"`
	Location          string    `json:"location,omitempty"`
	Description       string    `json:"description,omitempty"`
	PostedDate        time.Time `json:"posted_date,omitzero"`
	EmploymentType    string    `json:"employment_type,omitempty"`
	ExperienceLevel   string    `json:"experience_level,omitempty"`
	SalaryInformation string    `json:"salary_information,omitempty"`
	Industry          string    `json:"industry,omitempty"`
	RequiredSkills    string    `json:"required_skills,omitempty"`
	URL               string    `json:"url,omitempty"`

	RawData          json.RawMessage `json:"raw_data,omitempty"`
	ExtractionMethod Method          `json:"extraction_method,omitempty"`
	ExtractionError  string          `json:"extraction_error,omitempty"`
	ScrapedDate      time.Time       `json:"scraped_date,omitzero"`
}

// JobURL is the canonical public view URL for a job id.
func JobURL(externalID string) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s/", externalID)
}

// HasIdentity reports whether the record satisfies the emit rule: an id, or
// at least a title and a company.
func (r JobRecord) HasIdentity() bool {
	return r.ExternalID != "" || (r.Title != "" && r.Company != "")
}

// WithRaw attaches v as the diagnostic raw fragment.
func (r JobRecord) WithRaw(v any) JobRecord {
	if v == nil {
		return r
	}
	b, err := json.Marshal(v)
	if err != nil {
		return r
	}
	r.RawData = b
	return r
}
