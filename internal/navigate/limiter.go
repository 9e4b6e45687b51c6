package navigate

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter keeps one token bucket per hostname. A nil limiter, or one
// built with a non-positive rate, never blocks.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func NewHostLimiter(perSec float64, burst int) *HostLimiter {
	lim := rate.Limit(perSec)
	if perSec <= 0 {
		lim = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   lim,
		burst:   burst,
	}
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if b, ok := hl.buckets[host]; ok {
		return b
	}
	b := rate.NewLimiter(hl.limit, hl.burst)
	hl.buckets[host] = b
	return b
}

// Wait blocks until a request to raw's host may proceed.
func (hl *HostLimiter) Wait(ctx context.Context, raw string) error {
	if hl == nil {
		return ctx.Err()
	}
	return hl.bucket(hostOf(raw)).Wait(ctx)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "_"
	}
	return strings.ToLower(u.Hostname())
}
