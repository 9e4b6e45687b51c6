package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/notify"
	"jobsync-engine/internal/search"
	"jobsync-engine/internal/secrets"
	"jobsync-engine/internal/store"
	"jobsync-engine/internal/transport"
)

func openStore(ctx context.Context, cfg config.Config, dataDir string) (*store.DB, error) {
	if cfg.Store.Driver == "postgres" {
		return store.OpenPostgres(ctx, cfg.Store.PostgresDSN)
	}
	return store.Open(filepath.Join(dataDir, "jobsync.db"))
}

func buildNotifier(cfg config.Config) (notify.Notifier, error) {
	tg := cfg.Notify.Telegram
	if !tg.Enabled {
		return notify.Nop{}, nil
	}
	n, err := notify.NewTelegram(tg.Token, tg.ChatID)
	if err != nil {
		return notify.Nop{}, err
	}
	return n, nil
}

func backendClient(cfg config.Config) *transport.Client {
	return transport.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
}

// tokensFor prefers the keychain token of the configured account and
// falls back to the static API token.
func tokensFor(cfg config.Config, kr secrets.Store) secrets.Tokens {
	if strings.TrimSpace(cfg.Backend.Email) != "" {
		return secrets.KeyringTokens{Store: kr, Email: cfg.Backend.Email}
	}
	return secrets.StaticToken(cfg.Backend.APIToken)
}

// configSink submits to the backend when search.submit is on and keeps
// records in the local store otherwise. It reads the config on every call.
type configSink struct {
	cfg     func() config.Config
	db      *store.DB
	keyring secrets.Store
}

func (s configSink) Submit(ctx context.Context, recs []domain.JobRecord) (domain.BatchResult, error) {
	cfg := s.cfg()
	if !cfg.Search.Submit {
		return search.LocalSink{Store: s.db}.Submit(ctx, recs)
	}
	return transport.Submitter{
		Tokens: tokensFor(cfg, s.keyring),
		Client: backendClient(cfg),
	}.Submit(ctx, recs)
}

type configPrefs struct {
	cfg     func() config.Config
	keyring secrets.Store
}

func (p configPrefs) Preferences(ctx context.Context) (domain.Preferences, error) {
	cfg := p.cfg()
	return transport.Prefs{Tokens: tokensFor(cfg, p.keyring), Client: backendClient(cfg)}.Preferences(ctx)
}

func signIn(ctx context.Context, baseURL, email, password string) (string, error) {
	return transport.New(baseURL, 30*time.Second).SignIn(ctx, email, password)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Local-only guard (covers typical desktop usage)
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr can sometimes be just a host; fall back safely
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Token guard
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond immediately, then shutdown asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
