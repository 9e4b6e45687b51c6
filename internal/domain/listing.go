package domain

import (
	"strings"
	"time"
)

// Listing is a job record in the backend's vocabulary.
type Listing struct {
	ExternalID         string `json:"external_id"`
	Title              string `json:"title,omitempty"`
	Company            string `json:"company,omitempty"`
	Location           string `json:"location,omitempty"`
	Description        string `json:"description,omitempty"`
	Industry           string `json:"industry,omitempty"`
	ExperienceRequired string `json:"experience_required,omitempty"`
	RequiredSkills     string `json:"required_skills,omitempty"`
	SalaryInformation  string `json:"salary_information,omitempty"`
	URL                string `json:"url,omitempty"`
	PostedDate         string `json:"posted_date,omitempty"`
	Status             Status `json:"status"`
}

// ToListing converts a record for submission. Records without an id get
// an empty ExternalID and will be rejected by the backend.
func ToListing(r JobRecord) Listing {
	l := Listing{
		ExternalID:         r.ExternalID,
		Title:              r.Title,
		Company:            r.Company,
		Location:           r.Location,
		Description:        r.Description,
		Industry:           r.Industry,
		ExperienceRequired: r.ExperienceLevel,
		RequiredSkills:     r.RequiredSkills,
		SalaryInformation:  r.SalaryInformation,
		URL:                r.URL,
		Status:             StatusNewListing,
	}
	if !r.PostedDate.IsZero() {
		l.PostedDate = r.PostedDate.UTC().Format(time.RFC3339Nano)
	}
	return l
}

// FromListing is the inverse of ToListing for the shared vocabulary.
func FromListing(l Listing) JobRecord {
	r := JobRecord{
		ExternalID:        l.ExternalID,
		Title:             l.Title,
		Company:           l.Company,
		Location:          l.Location,
		Description:       l.Description,
		Industry:          l.Industry,
		ExperienceLevel:   l.ExperienceRequired,
		RequiredSkills:    l.RequiredSkills,
		SalaryInformation: l.SalaryInformation,
		URL:               l.URL,
	}
	if l.PostedDate != "" {
		if t, err := time.Parse(time.RFC3339Nano, l.PostedDate); err == nil {
			r.PostedDate = t
		}
	}
	return r
}

// ToListings converts a batch, preserving order.
func ToListings(rs []JobRecord) []Listing {
	out := make([]Listing, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToListing(r))
	}
	return out
}

// ListingError is the per-record failure of a batch submission.
type ListingError struct {
	ExternalID string   `json:"external_id"`
	Errors     []string `json:"errors"`
}

// BatchResult is the backend's answer to a batch submission.
type BatchResult struct {
	SavedCount int            `json:"saved_count"`
	Errors     []ListingError `json:"errors"`
}

// Validate returns the presence errors the backend enforces.
func (l Listing) Validate() []string {
	var errs []string
	check := func(v, name string) {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, name+" can't be blank")
		}
	}
	check(l.ExternalID, "External")
	check(l.Title, "Title")
	check(l.Company, "Company")
	check(l.Location, "Location")
	check(l.URL, "Url")
	if !l.Status.Valid() {
		errs = append(errs, "Status is not included in the list")
	}
	return errs
}
