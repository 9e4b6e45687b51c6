package search

import (
	"context"
	"time"

	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/extract"
)

// Sink receives the records of a finished run.
type Sink interface {
	Submit(ctx context.Context, recs []domain.JobRecord) (domain.BatchResult, error)
}

type batchSaver interface {
	SaveBatch(ctx context.Context, ls []domain.Listing, now time.Time) (domain.BatchResult, error)
}

// LocalSink writes records straight into the listing store, for runs
// with no remote backend.
type LocalSink struct {
	Store batchSaver
	Now   func() time.Time
}

func (s LocalSink) Submit(ctx context.Context, recs []domain.JobRecord) (domain.BatchResult, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Store.SaveBatch(ctx, domain.ToListings(extract.Dedup(recs)), now().UTC())
}
