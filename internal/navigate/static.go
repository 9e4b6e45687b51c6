package navigate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// Static serves canned HTML. Pages are looked up by exact URL first;
// with Dir set, job view URLs fall back to <Dir>/<job id>.html and any
// other URL to <Dir>/search.html.
type Static struct {
	Pages map[string]string
	Dir   string

	mu      sync.Mutex
	current string
	html    string
	scrolls int
}

var jobViewRe = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)`)

func (s *Static) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html, err := s.lookup(url)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current, s.html = url, html
	s.mu.Unlock()
	return nil
}

func (s *Static) lookup(url string) (string, error) {
	if h, ok := s.Pages[url]; ok {
		return h, nil
	}
	if s.Dir == "" {
		return "", fmt.Errorf("no page for %s", url)
	}
	name := "search.html"
	if m := jobViewRe.FindStringSubmatch(url); m != nil {
		name = m[1] + ".html"
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("no page for %s: %w", url, err)
	}
	return string(b), nil
}

func (s *Static) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, ctx.Err()
}

func (s *Static) HTML(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return "", fmt.Errorf("no page open")
	}
	return s.html, ctx.Err()
}

// WaitReady returns at once; canned pages are fully rendered.
func (s *Static) WaitReady(ctx context.Context, _ []string, _ time.Duration) error {
	return ctx.Err()
}

func (s *Static) ScrollList(ctx context.Context, _ string, times int, delay time.Duration) error {
	for i := 0; i < times; i++ {
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
		s.mu.Lock()
		s.scrolls++
		s.mu.Unlock()
	}
	return nil
}

// Scrolls reports how many scroll steps were taken.
func (s *Static) Scrolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrolls
}

func (s *Static) Close() error { return nil }
