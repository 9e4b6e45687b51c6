package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gofrs/flock"

	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/events"
	"jobsync-engine/internal/extract"
	"jobsync-engine/internal/navigate"
	"jobsync-engine/internal/notify"
)

var ErrAlreadyRunning = errors.New("search already running")

// SeenStore remembers ids across runs.
type SeenStore interface {
	FilterUnseen(ctx context.Context, ids []string) ([]string, error)
	MarkSeen(ctx context.Context, ids []string, now time.Time) error
}

type PrefsSource interface {
	Preferences(ctx context.Context) (domain.Preferences, error)
}

type Deps struct {
	// NewNavigator opens a fresh navigator per run.
	NewNavigator func() (navigate.Navigator, error)
	// Extractor is called once per run.
	Extractor    func() *extract.Extractor
	Limiter      *navigate.HostLimiter
	Seen         SeenStore
	Sink         Sink
	Prefs        PrefsSource
	Events       events.Publisher
	Notifier     notify.Notifier
	Log          *slog.Logger
	// LockPath guards against a second engine process searching at once.
	LockPath     string
	Now          func() time.Time
}

type Status struct {
	Running    bool   `json:"running"`
	Stage      string `json:"stage,omitempty"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	LastRunAt  string `json:"last_run_at"`
	LastOkAt   string `json:"last_ok_at"`
	LastError  string `json:"last_error"`
	LastFound  int    `json:"last_found"`
	LastSaved  int    `json:"last_saved"`
	LastFailed int    `json:"last_failed"`
}

// Runner executes one search at a time.
type Runner struct {
	d Deps

	running atomic.Bool
	status  atomic.Value // Status

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewRunner(d Deps) *Runner {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Events == nil {
		d.Events = events.Discard{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	d.Log = d.Log.With("component", "search")
	r := &Runner{d: d}
	r.status.Store(Status{})
	return r
}

func (r *Runner) Status() Status {
	return r.status.Load().(Status)
}

func (r *Runner) update(fn func(*Status)) {
	st := r.Status()
	fn(&st)
	r.status.Store(st)
}

// Run executes a search synchronously.
func (r *Runner) Run(ctx context.Context, opts Options) (notify.Summary, error) {
	if !r.running.CompareAndSwap(false, true) {
		return notify.Summary{}, ErrAlreadyRunning
	}
	defer r.running.Store(false)
	return r.run(ctx, opts)
}

// Start launches a search in the background under parent.
func (r *Runner) Start(parent context.Context, opts Options) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go func() {
		defer r.running.Store(false)
		_, _ = r.run(parent, opts)
	}()
	return nil
}

// Cancel stops the running search after the current job. It reports
// whether a search was running.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

func (r *Runner) run(parent context.Context, opts Options) (sum notify.Summary, err error) {
	ctx, cancel := context.WithCancel(parent)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	if r.d.LockPath != "" {
		lock := flock.New(r.d.LockPath)
		ok, lerr := lock.TryLock()
		if lerr != nil {
			return sum, fmt.Errorf("search lock: %w", lerr)
		}
		if !ok {
			return sum, ErrAlreadyRunning
		}
		defer func() { _ = lock.Unlock() }()
	}

	started := r.d.Now().UTC().Format(time.RFC3339)
	r.update(func(s *Status) {
		s.Running = true
		s.Stage = "starting"
		s.Processed, s.Total = 0, 0
		s.LastRunAt = started
		s.LastError = ""
	})
	r.d.Events.Publish(events.MakeEvent("", events.SearchStarted, nil))

	sum, err = r.search(ctx, opts)
	sum.Err = err

	r.update(func(s *Status) {
		s.Running = false
		s.Stage = ""
		s.LastFound = sum.Found
		s.LastSaved = sum.Saved
		s.LastFailed = sum.Failed
		if err != nil {
			s.LastError = err.Error()
		} else {
			s.LastOkAt = r.d.Now().UTC().Format(time.RFC3339)
		}
	})

	done := map[string]any{"found": sum.Found, "saved": sum.Saved, "failed": sum.Failed}
	if err != nil {
		done["error"] = err.Error()
		r.d.Log.Error("search failed", "err", err, "found", sum.Found)
	} else {
		r.d.Log.Info("search finished", "found", sum.Found, "saved", sum.Saved, "failed", sum.Failed)
	}
	r.d.Events.Publish(events.MakeEvent("", events.SearchFinished, done))

	nctx, ncancel := context.WithTimeout(context.WithoutCancel(parent), 15*time.Second)
	defer ncancel()
	if nerr := r.d.Notifier.SearchDone(nctx, sum); nerr != nil {
		r.d.Log.Warn("notify failed", "err", nerr)
	}
	return sum, err
}

func (r *Runner) stage(name string) {
	r.update(func(s *Status) { s.Stage = name })
}

func (r *Runner) search(ctx context.Context, opts Options) (notify.Summary, error) {
	var sum notify.Summary

	prefs := r.prefs(ctx, opts)
	start := strings.TrimSpace(opts.StartURL)
	if start == "" {
		start = prefs.SearchURL()
	}
	sum.SearchURL = start
	ex := r.d.Extractor()

	nav, err := r.d.NewNavigator()
	if err != nil {
		return sum, fmt.Errorf("navigator: %w", err)
	}
	defer func() {
		if cerr := nav.Close(); cerr != nil {
			r.d.Log.Debug("navigator close", "err", cerr)
		}
	}()

	r.stage("navigating")
	if err := r.open(ctx, nav, start); err != nil {
		return sum, err
	}

	r.stage("scrolling")
	if opts.MaxScrolls > 0 && opts.ListSelector != "" {
		if err := nav.ScrollList(ctx, opts.ListSelector, opts.MaxScrolls, opts.ScrollDelay); err != nil {
			return sum, fmt.Errorf("scroll list: %w", err)
		}
	}

	r.stage("harvesting")
	page, err := nav.HTML(ctx)
	if err != nil {
		return sum, fmt.Errorf("read result page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return sum, fmt.Errorf("parse result page: %w", err)
	}
	cards := ex.Harvest(doc)
	sum.Found = len(cards)

	pending, err := r.unseen(ctx, cards)
	if err != nil {
		return sum, err
	}
	if opts.MaxDetails > 0 && len(pending) > opts.MaxDetails {
		pending = pending[:opts.MaxDetails]
	}
	r.d.Log.Info("result page harvested", "url", start, "found", len(cards), "new", len(pending))
	r.update(func(s *Status) { s.Total = len(pending) })

	r.stage("extracting")
	recs := make([]domain.JobRecord, 0, len(pending))
	for i, card := range pending {
		if i > 0 {
			if err := sleep(ctx, opts.DetailDelay); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		recs = append(recs, r.detail(ctx, nav, ex, card, opts.ReadyTimeout))
		r.update(func(s *Status) { s.Processed = i + 1 })
		r.d.Events.Publish(events.MakeEvent("", events.SearchProgress, map[string]any{
			"processed": i + 1, "total": len(pending), "external_id": card.ExternalID,
		}))
	}
	recs = extract.Dedup(recs)

	// ctx may be cancelled; what was extracted is still submitted
	sctx := context.WithoutCancel(ctx)

	r.stage("submitting")
	if len(recs) > 0 && r.d.Sink != nil {
		res, err := r.d.Sink.Submit(sctx, recs)
		if err != nil {
			return sum, fmt.Errorf("submit: %w", err)
		}
		sum.Saved = res.SavedCount
		sum.Failed = len(res.Errors)
		sum.New = savedRecords(recs, res)
		r.d.Events.Publish(events.MakeEvent("", events.ListingsSaved, res))
	}

	if r.d.Seen != nil {
		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			if rec.ExternalID != "" && rec.ExtractionError == "" {
				ids = append(ids, rec.ExternalID)
			}
		}
		if err := r.d.Seen.MarkSeen(sctx, ids, r.d.Now().UTC()); err != nil {
			r.d.Log.Warn("mark seen failed", "err", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("search cancelled after %d of %d jobs: %w", len(recs), len(pending), err)
	}
	return sum, nil
}

// prefs falls back to the configured preferences when the backend
// cannot be reached.
func (r *Runner) prefs(ctx context.Context, opts Options) domain.Preferences {
	if !opts.UseBackendPrefs || r.d.Prefs == nil {
		return opts.Prefs
	}
	p, err := r.d.Prefs.Preferences(ctx)
	if err != nil {
		r.d.Log.Warn("backend preferences unavailable, using config", "err", err)
		return opts.Prefs
	}
	return p
}

func (r *Runner) open(ctx context.Context, nav navigate.Navigator, url string) error {
	if err := r.d.Limiter.Wait(ctx, url); err != nil {
		return err
	}
	if err := nav.Open(ctx, url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// unseen drops cards without an id and those seen in earlier runs.
func (r *Runner) unseen(ctx context.Context, cards []domain.JobRecord) ([]domain.JobRecord, error) {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.ExternalID != "" {
			ids = append(ids, c.ExternalID)
		}
	}
	if r.d.Seen != nil {
		var err error
		ids, err = r.d.Seen.FilterUnseen(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("filter seen: %w", err)
		}
	}
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := make([]domain.JobRecord, 0, len(ids))
	for _, c := range cards {
		if keep[c.ExternalID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// detail visits the job page for card. Failures yield the card record
// tagged with the error instead of aborting the run.
func (r *Runner) detail(ctx context.Context, nav navigate.Navigator, ex *extract.Extractor, card domain.JobRecord, ready time.Duration) domain.JobRecord {
	url := card.URL
	if url == "" {
		url = domain.JobURL(card.ExternalID)
	}
	fail := func(err error) domain.JobRecord {
		r.d.Log.Warn("job detail failed", "job_id", card.ExternalID, "err", err)
		card.URL = url
		card.ExtractionError = err.Error()
		if card.ScrapedDate.IsZero() {
			card.ScrapedDate = r.d.Now()
		}
		return card
	}

	if cur, err := nav.CurrentURL(ctx); err == nil && cur != "" && extract.IDFromURL(cur) == card.ExternalID {
		r.d.Log.Debug("job page already open", "job_id", card.ExternalID)
	} else if err := r.open(ctx, nav, url); err != nil {
		return fail(err)
	}
	if err := nav.WaitReady(ctx, ex.ReadySelectors(), ready); err != nil {
		return fail(err)
	}
	page, err := nav.HTML(ctx)
	if err != nil {
		return fail(err)
	}
	res, err := ex.ExtractString(page, card.ExternalID)
	if err != nil {
		return fail(err)
	}

	rec := res.Records[0]
	for _, c := range res.Records {
		if c.ExternalID == card.ExternalID {
			rec = c
			break
		}
	}
	if rec.ExternalID == "" {
		rec.ExternalID = card.ExternalID
	}
	if rec.ExternalID != card.ExternalID {
		return fail(fmt.Errorf("page shows job %s", rec.ExternalID))
	}
	merged := extract.Merge([]domain.JobRecord{rec, card})
	return merged[0]
}

func savedRecords(recs []domain.JobRecord, res domain.BatchResult) []domain.JobRecord {
	failed := make(map[string]bool, len(res.Errors))
	for _, e := range res.Errors {
		failed[e.ExternalID] = true
	}
	var out []domain.JobRecord
	for _, r := range recs {
		if !failed[r.ExternalID] {
			out = append(out, r)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
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
