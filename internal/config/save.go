package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var knownStrategies = map[string]bool{"json": true, "dom": true, "panel": true}

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		errs = append(errs, "backend.base_url is required")
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		errs = append(errs, "backend.timeout_seconds must be > 0")
	}
	if cfg.Search.MaxScrolls < 0 {
		errs = append(errs, "search.max_scrolls must be >= 0")
	}
	if cfg.Search.ScrollDelayMs < 0 || cfg.Search.DetailDelayMs < 0 || cfg.Search.ReadyTimeoutMs < 0 {
		errs = append(errs, "search delays must be >= 0")
	}
	if cfg.Search.RequestsPerSecond <= 0 {
		errs = append(errs, "search.requests_per_second must be > 0")
	}
	if cfg.Search.Burst <= 0 {
		errs = append(errs, "search.burst must be > 0")
	}
	if cfg.Extraction.MaxDepth < 0 {
		errs = append(errs, "extraction.max_depth must be >= 0")
	}
	for i, s := range cfg.Extraction.Strategies {
		if !knownStrategies[s] {
			errs = append(errs, fmt.Sprintf("extraction.strategies[%d] %q is not one of json, dom, panel", i, s))
		}
	}
	for i, c := range cfg.Extraction.Cards {
		if strings.TrimSpace(c.Item) == "" {
			errs = append(errs, fmt.Sprintf("extraction.cards[%d].item is required", i))
		}
	}

	switch cfg.Store.Driver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.Store.PostgresDSN) == "" {
			errs = append(errs, "store.postgres_dsn is required when store.driver=postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", cfg.Store.Driver))
	}

	if cfg.Notify.Telegram.Enabled && cfg.Notify.Telegram.ChatID == 0 {
		errs = append(errs, "notify.telegram.chat_id is required when notify.telegram.enabled=true")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
