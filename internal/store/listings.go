package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobsync-engine/internal/domain"
)

var ErrNotFound = errors.New("listing not found")

const errTaken = "External has already been taken"

// StoredListing is a listing row with its local bookkeeping.
type StoredListing struct {
	ID int64 `json:"id"`
	domain.Listing
	ScrapedDate string `json:"scraped_date"`
}

type ListOpts struct {
	Sort   string // scraped | posted | company | title
	Window string // 24h | 7d | 30d | all
	Status string
	Limit  int
}

// InsertListing stores l unless its external id already exists.
func (d *DB) InsertListing(ctx context.Context, l domain.Listing, now time.Time) (added bool, err error) {
	res, err := d.exec(ctx, `
INSERT INTO job_listings (external_id, title, company, location, description, industry,
  experience_required, required_skills, salary_information, url, posted_date, scraped_date, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (external_id) DO NOTHING;`,
		l.ExternalID, l.Title, l.Company, l.Location, l.Description, l.Industry,
		l.ExperienceRequired, l.RequiredSkills, l.SalaryInformation, l.URL, l.PostedDate,
		fmtTime(now), int(l.Status),
	)
	if err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return n > 0, nil
}

// SaveBatch validates and inserts each listing, collecting per-record
// failures the way the backend reports them.
func (d *DB) SaveBatch(ctx context.Context, ls []domain.Listing, now time.Time) (domain.BatchResult, error) {
	res := domain.BatchResult{Errors: []domain.ListingError{}}
	for _, l := range ls {
		if errs := l.Validate(); len(errs) > 0 {
			res.Errors = append(res.Errors, domain.ListingError{ExternalID: l.ExternalID, Errors: errs})
			continue
		}
		added, err := d.InsertListing(ctx, l, now)
		if err != nil {
			return res, err
		}
		if !added {
			res.Errors = append(res.Errors, domain.ListingError{ExternalID: l.ExternalID, Errors: []string{errTaken}})
			continue
		}
		res.SavedCount++
	}
	return res, nil
}

func (d *DB) ListListings(ctx context.Context, opts ListOpts, now time.Time) ([]StoredListing, error) {
	// whitelist sort columns
	order := map[string]string{
		"scraped": "scraped_date DESC",
		"posted":  "posted_date DESC",
		"company": "company ASC",
		"title":   "title ASC",
	}[opts.Sort]
	if order == "" {
		order = "scraped_date DESC"
	}
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 500
	}

	// scraped_date is RFC3339 UTC so string comparison orders correctly
	where := "WHERE 1=1"
	args := []any{}
	switch opts.Window {
	case "24h":
		where += " AND scraped_date >= ?"
		args = append(args, fmtTime(now.Add(-24*time.Hour)))
	case "7d":
		where += " AND scraped_date >= ?"
		args = append(args, fmtTime(now.AddDate(0, 0, -7)))
	case "30d":
		where += " AND scraped_date >= ?"
		args = append(args, fmtTime(now.AddDate(0, 0, -30)))
	}
	if opts.Status != "" {
		st, err := domain.ParseStatus(opts.Status)
		if err != nil {
			return nil, err
		}
		where += " AND status = ?"
		args = append(args, int(st))
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`
SELECT %s
FROM job_listings
%s
ORDER BY %s, id ASC
LIMIT ?;`, listingCols, where, order)

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StoredListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) GetListing(ctx context.Context, id int64) (StoredListing, error) {
	row := d.queryRow(ctx, `SELECT `+listingCols+` FROM job_listings WHERE id = ?;`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredListing{}, ErrNotFound
	}
	return l, err
}

func (d *DB) UpdateStatus(ctx context.Context, id int64, st domain.Status) error {
	if !st.Valid() {
		return fmt.Errorf("invalid status %d", int(st))
	}
	res, err := d.exec(ctx, `UPDATE job_listings SET status = ? WHERE id = ?;`, int(st), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (d *DB) DeleteListing(ctx context.Context, id int64) error {
	res, err := d.exec(ctx, `DELETE FROM job_listings WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CleanupOld removes listings scraped more than days ago. days <= 0 keeps everything.
func (d *DB) CleanupOld(ctx context.Context, days int, now time.Time) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := fmtTime(now.AddDate(0, 0, -days))
	res, err := d.exec(ctx, `DELETE FROM job_listings WHERE scraped_date < ?;`, cutoff)
	if err != nil {
		return 0, err
	}
	if _, err := d.exec(ctx, `DELETE FROM seen_listings WHERE last_seen < ?;`, cutoff); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

const listingCols = `id, external_id, title, company, location, description, industry,
  experience_required, required_skills, salary_information, url, posted_date, scraped_date, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (StoredListing, error) {
	var l StoredListing
	var st int
	err := s.Scan(
		&l.ID,
		&l.ExternalID,
		&l.Title,
		&l.Company,
		&l.Location,
		&l.Description,
		&l.Industry,
		&l.ExperienceRequired,
		&l.RequiredSkills,
		&l.SalaryInformation,
		&l.URL,
		&l.PostedDate,
		&l.ScrapedDate,
		&st,
	)
	l.Status = domain.Status(st)
	return l, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
