package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/events"
	"jobsync-engine/internal/extract"
	"jobsync-engine/internal/httpapi"
	"jobsync-engine/internal/logger"
	"jobsync-engine/internal/navigate"
	"jobsync-engine/internal/search"
	"jobsync-engine/internal/secrets"
)

func main() {
	// Engine data dir: use env if provided (desktop shell can pass one), else local folder.
	dataDir := os.Getenv("JOBSYNC_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlaySelectors(&cfg, filepath.Join(dataDir, "selectors.yml")); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config invalid (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	logFile := cfg.App.LogFile
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(dataDir, logFile)
	}
	lg := logger.New(logger.Options{Level: cfg.App.LogLevel, File: logFile}, os.Stderr)
	defer func() { _ = lg.Close() }()
	slogger := lg.Slog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg, dataDir)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("store migrate failed: %v", err)
	}
	if n, err := db.CleanupOld(ctx, cfg.Store.RetentionDays, time.Now().UTC()); err != nil {
		lg.Warn("retention cleanup failed", "err", err)
	} else if n > 0 {
		lg.Info("old listings removed", "count", n, "retention_days", cfg.Store.RetentionDays)
	}

	hub := events.NewHub()
	kr := secrets.Keyring{}

	current := func() config.Config { return cfgVal.Load().(config.Config) }
	newExtractor := func() *extract.Extractor {
		return extract.New(current().Extraction.Rules(), slogger)
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		lg.Warn("telegram notifier disabled", "err", err)
	}

	runner := search.NewRunner(search.Deps{
		NewNavigator: func() (navigate.Navigator, error) {
			c := current()
			return navigate.NewBrowser(navigate.BrowserOptions{
				Headless:   c.Search.Headless,
				ControlURL: c.Search.BrowserURL,
			}, slogger), nil
		},
		Extractor: newExtractor,
		Limiter:   navigate.NewHostLimiter(cfg.Search.RequestsPerSecond, cfg.Search.Burst),
		Seen:      db,
		Sink:      configSink{cfg: current, db: db, keyring: kr},
		Prefs:     configPrefs{cfg: current, keyring: kr},
		Events:    hub,
		Notifier:  notifier,
		Log:       slogger,
		LockPath:  filepath.Join(dataDir, "search.lock"),
	})

	deps := httpapi.Deps{
		Store:       db,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Extractor:   newExtractor,
		Runner:      runner,
		BaseCtx:     ctx,
		Keyring:     kr,
		SignIn:      signIn,
		Log:         slogger,
	}
	mux := httpapi.NewMux(deps)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler:           httpapi.Handler(deps, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownToken, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&shutdownToken, srv))

	tokenPath := filepath.Join(dataDir, "shutdown.token")
	if err := os.WriteFile(tokenPath, []byte(shutdownToken), 0o600); err != nil {
		lg.Warn("could not write shutdown token", "path", tokenPath, "err", err)
	}
	defer os.Remove(tokenPath)

	lg.Info("engine listening", "addr", "http://"+addr, "store", db.Dialect.String(), "config", userCfgPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// /shutdown closes the server; stop the rest with it
		defer stop()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		runner.Cancel()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("engine stopped", "err", err)
		os.Exit(1)
	}
	lg.Info("engine stopped")
}
