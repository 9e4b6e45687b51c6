package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func (d *DB) Migrate(ctx context.Context) error {
	if d.Dialect == Postgres {
		return d.migratePostgres(ctx)
	}
	return d.migrateSQLite(ctx)
}

func (d *DB) migrateSQLite(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS job_listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  external_id TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  industry TEXT NOT NULL DEFAULT '',
  experience_required TEXT NOT NULL DEFAULT '',
  required_skills TEXT NOT NULL DEFAULT '',
  salary_information TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  posted_date TEXT NOT NULL DEFAULT '',
  scraped_date TEXT NOT NULL,
  status INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if err := createCommon(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) migratePostgres(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS job_listings (
  id BIGSERIAL PRIMARY KEY,
  external_id TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  industry TEXT NOT NULL DEFAULT '',
  experience_required TEXT NOT NULL DEFAULT '',
  required_skills TEXT NOT NULL DEFAULT '',
  salary_information TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  posted_date TEXT NOT NULL DEFAULT '',
  scraped_date TEXT NOT NULL,
  status INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}
	if err := createCommon(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// createCommon holds the DDL both dialects accept verbatim.
func createCommon(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_job_listings_external_id ON job_listings(external_id);`,
		`CREATE INDEX IF NOT EXISTS idx_job_listings_scraped_date ON job_listings(scraped_date);`,
		`CREATE TABLE IF NOT EXISTS seen_listings (
  external_id TEXT PRIMARY KEY,
  first_seen TEXT NOT NULL,
  last_seen TEXT NOT NULL
);`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
