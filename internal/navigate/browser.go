package navigate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type BrowserOptions struct {
	Headless bool
	// ControlURL attaches to a running Chromium instead of launching one.
	ControlURL string
	// NavTimeout bounds a single navigation.
	NavTimeout time.Duration
}

// Browser is a single-tab Navigator backed by go-rod.
type Browser struct {
	opts BrowserOptions
	log  *slog.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func NewBrowser(opts BrowserOptions, log *slog.Logger) *Browser {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Browser{opts: opts, log: log}
}

func (b *Browser) ensure() (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page != nil {
		return b.page, nil
	}

	u := strings.TrimSpace(b.opts.ControlURL)
	if u == "" {
		l := launcher.New().Headless(b.opts.Headless)
		launched, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		b.launcher = l
		u = launched
		b.log.Info("browser launched", "headless", b.opts.Headless)
	}

	br := rod.New().ControlURL(u)
	if err := br.Connect(); err != nil {
		b.killLocked()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	page, err := br.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = br.Close()
		b.killLocked()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	b.browser = br
	b.page = page
	return page, nil
}

func (b *Browser) Open(ctx context.Context, url string) error {
	page, err := b.ensure()
	if err != nil {
		return err
	}
	nctx, cancel := context.WithTimeout(ctx, b.opts.NavTimeout)
	defer cancel()

	p := page.Context(nctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	page, err := b.ensure()
	if err != nil {
		return "", err
	}
	info, err := page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (b *Browser) HTML(ctx context.Context) (string, error) {
	page, err := b.ensure()
	if err != nil {
		return "", err
	}
	return page.Context(ctx).HTML()
}

func (b *Browser) WaitReady(ctx context.Context, selectors []string, timeout time.Duration) error {
	if len(selectors) == 0 || timeout <= 0 {
		return nil
	}
	page, err := b.ensure()
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := page.Context(wctx)
	for _, sel := range selectors {
		if _, err := p.Element(sel); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Debug("page not ready, reading anyway", "selector", sel, "timeout", timeout)
			return nil
		}
	}
	return nil
}

const scrollJS = `(sel) => {
  const el = document.querySelector(sel) || document.scrollingElement;
  if (!el) return false;
  el.scrollTop = el.scrollHeight;
  return true;
}`

func (b *Browser) ScrollList(ctx context.Context, selector string, times int, delay time.Duration) error {
	page, err := b.ensure()
	if err != nil {
		return err
	}
	p := page.Context(ctx)
	for i := 0; i < times; i++ {
		if _, err := p.Eval(scrollJS, selector); err != nil {
			// element detached mid-scroll; treat as end of list
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			b.log.Debug("scroll failed", "selector", selector, "err", err)
			return nil
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	b.killLocked()
	b.browser, b.page = nil, nil
	return err
}

func (b *Browser) killLocked() {
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
}
