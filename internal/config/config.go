// internal/config/config.go
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Selectors struct {
	Title       []string `yaml:"title" json:"title"`
	Company     []string `yaml:"company" json:"company"`
	Location    []string `yaml:"location" json:"location"`
	Description []string `yaml:"description" json:"description"`
}

type CardLayout struct {
	Item     string   `yaml:"item" json:"item"`
	Title    []string `yaml:"title" json:"title"`
	Company  []string `yaml:"company" json:"company"`
	Location []string `yaml:"location" json:"location"`
	Listed   []string `yaml:"listed" json:"listed"`
}

type Extraction struct {
	Containers []string     `yaml:"containers" json:"containers"`
	MaxDepth   int          `yaml:"max_depth" json:"max_depth"`
	DOM        Selectors    `yaml:"dom" json:"dom"`
	PanelRoots []string     `yaml:"panel_roots" json:"panel_roots"`
	Panel      Selectors    `yaml:"panel" json:"panel"`
	Cards      []CardLayout `yaml:"cards" json:"cards"`
	Strategies []string     `yaml:"strategies" json:"strategies"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		LogLevel string `yaml:"log_level" json:"log_level"`
		LogFile  string `yaml:"log_file" json:"log_file"`
		// AllowedOrigins are browser origins besides the desktop shell and
		// loopback pages that may call the local API.
		AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	} `yaml:"app" json:"app"`

	Backend struct {
		BaseURL        string `yaml:"base_url" json:"base_url"`
		Email          string `yaml:"email" json:"email"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
		// APIToken is what the local /api/v1 endpoints accept.
		APIToken string `yaml:"api_token" json:"-"`
	} `yaml:"backend" json:"backend"`

	Search struct {
		JobTitles       []string `yaml:"job_titles" json:"job_titles"`
		Locations       []string `yaml:"locations" json:"locations"`
		Industries      []string `yaml:"industries" json:"industries"`
		UseBackendPrefs bool     `yaml:"use_backend_preferences" json:"use_backend_preferences"`
		StartURL        string   `yaml:"start_url" json:"start_url"`

		ListSelector   string `yaml:"list_selector" json:"list_selector"`
		MaxScrolls     int    `yaml:"max_scrolls" json:"max_scrolls"`
		ScrollDelayMs  int    `yaml:"scroll_delay_ms" json:"scroll_delay_ms"`
		DetailDelayMs  int    `yaml:"detail_delay_ms" json:"detail_delay_ms"`
		ReadyTimeoutMs int    `yaml:"ready_timeout_ms" json:"ready_timeout_ms"`
		MaxDetails     int    `yaml:"max_details" json:"max_details"`

		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`

		Headless   bool   `yaml:"headless" json:"headless"`
		BrowserURL string `yaml:"browser_url" json:"browser_url"`
		Submit     bool   `yaml:"submit" json:"submit"`
	} `yaml:"search" json:"search"`

	Extraction Extraction `yaml:"extraction" json:"extraction"`

	Store struct {
		Driver        string `yaml:"driver" json:"driver"` // sqlite | postgres
		PostgresDSN   string `yaml:"postgres_dsn" json:"-"`
		RetentionDays int    `yaml:"retention_days" json:"retention_days"`
	} `yaml:"store" json:"store"`

	Notify struct {
		Telegram struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			ChatID  int64  `yaml:"chat_id" json:"chat_id"`
			Token   string `yaml:"-" json:"-"`
		} `yaml:"telegram" json:"telegram"`
	} `yaml:"notify" json:"notify"`
}

// KeepSecrets copies the fields that never leave the engine over JSON
// from prev into c.
func (c *Config) KeepSecrets(prev Config) {
	c.Backend.APIToken = prev.Backend.APIToken
	c.Store.PostgresDSN = prev.Store.PostgresDSN
	c.Notify.Telegram.Token = prev.Notify.Telegram.Token
}

// Defaults returns the values used for anything the file leaves unset.
func Defaults() Config {
	var c Config
	c.App.Port = 38471
	c.App.LogLevel = "info"
	c.Backend.BaseURL = "http://127.0.0.1:3000"
	c.Backend.TimeoutSeconds = 30
	c.Search.ListSelector = ".scaffold-layout__list-container"
	c.Search.MaxScrolls = 25
	c.Search.ScrollDelayMs = 800
	c.Search.DetailDelayMs = 2000
	c.Search.ReadyTimeoutMs = 5000
	c.Search.MaxDetails = 50
	c.Search.RequestsPerSecond = 0.5
	c.Search.Burst = 1
	c.Search.Headless = true
	c.Search.Submit = true
	c.Extraction.MaxDepth = 50
	c.Store.Driver = "sqlite"
	c.Store.RetentionDays = 90
	return c
}

// Load reads the YAML file at path on top of Defaults. A .env file next to
// it is loaded first; JOBSYNC_* variables then override file values.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if err := godotenv.Load(filepath.Join(filepath.Dir(path), ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("JOBSYNC_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("JOBSYNC_BACKEND_EMAIL"); v != "" {
		cfg.Backend.Email = v
	}
	if v := os.Getenv("JOBSYNC_API_TOKEN"); v != "" {
		cfg.Backend.APIToken = v
	}
	if v := os.Getenv("JOBSYNC_PG_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
		cfg.Store.Driver = "postgres"
	}
	if v := os.Getenv("JOBSYNC_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("JOBSYNC_TELEGRAM_TOKEN"); v != "" {
		cfg.Notify.Telegram.Token = v
	}
	if v := os.Getenv("JOBSYNC_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = id
		}
	}
}
