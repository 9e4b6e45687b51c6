package navigate

import (
	"context"
	"time"
)

// Navigator drives whatever renders the job site: a headless browser in
// production, canned pages in tests and offline runs.
type Navigator interface {
	Open(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// WaitReady polls until every selector matches or timeout passes.
	// A timeout is not an error; the caller reads whatever rendered.
	WaitReady(ctx context.Context, selectors []string, timeout time.Duration) error
	// ScrollList scrolls the element matching selector to its end, times
	// times, pausing delay between scrolls so lazy lists can load.
	ScrollList(ctx context.Context, selector string, times int, delay time.Duration) error
	Close() error
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
