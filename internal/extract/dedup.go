package extract

import "jobsync-engine/internal/domain"

// Key is the identity used for de-duplication: the external id, or the
// folded title and company for records that have none.
func Key(r domain.JobRecord) string {
	if r.ExternalID != "" {
		return "id:" + r.ExternalID
	}
	return "tc:" + Fold(r.Title) + "|" + Fold(r.Company)
}

// Dedup keeps the first record per key, preserving order.
func Dedup(rs []domain.JobRecord) []domain.JobRecord {
	seen := make(map[string]bool, len(rs))
	out := make([]domain.JobRecord, 0, len(rs))
	for _, r := range rs {
		k := Key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// Merge is Dedup where later duplicates fill fields the kept record lacks.
func Merge(rs []domain.JobRecord) []domain.JobRecord {
	idx := make(map[string]int, len(rs))
	out := make([]domain.JobRecord, 0, len(rs))
	for _, r := range rs {
		k := Key(r)
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, r)
			continue
		}
		out[i] = fillFrom(out[i], r)
	}
	return out
}

func fillFrom(dst, src domain.JobRecord) domain.JobRecord {
	setIfEmpty(&dst.Title, src.Title)
	setIfEmpty(&dst.Company, src.Company)
	setIfEmpty(&dst.Location, src.Location)
	setIfEmpty(&dst.Description, src.Description)
	setIfEmpty(&dst.EmploymentType, src.EmploymentType)
	setIfEmpty(&dst.ExperienceLevel, src.ExperienceLevel)
	setIfEmpty(&dst.SalaryInformation, src.SalaryInformation)
	setIfEmpty(&dst.Industry, src.Industry)
	setIfEmpty(&dst.RequiredSkills, src.RequiredSkills)
	setIfEmpty(&dst.URL, src.URL)
	if dst.PostedDate.IsZero() {
		dst.PostedDate = src.PostedDate
	}
	return dst
}
