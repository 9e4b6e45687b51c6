package store

import (
	"context"
	"time"
)

// FilterUnseen returns the ids not yet recorded, preserving order.
func (d *DB) FilterUnseen(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		var one int
		err := d.queryRow(ctx, `SELECT 1 FROM seen_listings WHERE external_id = ? LIMIT 1;`, id).Scan(&one)
		if err == nil {
			continue
		}
		if !isNoRows(err) {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// MarkSeen records ids, refreshing last_seen on repeats.
func (d *DB) MarkSeen(ctx context.Context, ids []string, now time.Time) error {
	ts := fmtTime(now)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := d.exec(ctx, `
INSERT INTO seen_listings (external_id, first_seen, last_seen)
VALUES (?, ?, ?)
ON CONFLICT (external_id) DO UPDATE SET last_seen = excluded.last_seen;`,
			id, ts, ts); err != nil {
			return err
		}
	}
	return nil
}
