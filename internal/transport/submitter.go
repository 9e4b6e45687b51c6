package transport

import (
	"context"
	"fmt"

	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/extract"
	"jobsync-engine/internal/secrets"
)

// Batcher is the part of Client a Submitter needs.
type Batcher interface {
	SubmitBatch(ctx context.Context, token string, ls []domain.Listing) (domain.BatchResult, error)
}

// Submitter de-duplicates records and ships them with the current token.
type Submitter struct {
	Tokens secrets.Tokens
	Client Batcher
}

func (s Submitter) Submit(ctx context.Context, recs []domain.JobRecord) (domain.BatchResult, error) {
	recs = extract.Dedup(recs)
	if len(recs) == 0 {
		return domain.BatchResult{}, nil
	}
	tok, err := s.Tokens.Token(ctx)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("submit: %w", err)
	}
	return s.Client.SubmitBatch(ctx, tok, domain.ToListings(recs))
}

// Prefs reads search preferences from the backend with the current token.
type Prefs struct {
	Tokens secrets.Tokens
	Client *Client
}

func (p Prefs) Preferences(ctx context.Context) (domain.Preferences, error) {
	tok, err := p.Tokens.Token(ctx)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("preferences: %w", err)
	}
	return p.Client.SearchPreferences(ctx, tok)
}
