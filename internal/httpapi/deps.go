package httpapi

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/events"
	"jobsync-engine/internal/extract"
	"jobsync-engine/internal/search"
	"jobsync-engine/internal/secrets"
	"jobsync-engine/internal/store"
)

type Deps struct {
	Store *store.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Extractor builds an extractor from the current config.
	Extractor func() *extract.Extractor

	Runner *search.Runner
	// BaseCtx outlives requests; background searches run under it.
	BaseCtx context.Context

	Keyring secrets.Store
	SignIn  func(ctx context.Context, baseURL, email, password string) (string, error)

	Log *slog.Logger
	Now func() time.Time
}

func (d Deps) cfg() config.Config {
	return d.CfgVal.Load().(config.Config)
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
