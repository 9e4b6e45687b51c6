package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/events"
	"jobsync-engine/internal/extract"
	"jobsync-engine/internal/navigate"
	"jobsync-engine/internal/search"
	"jobsync-engine/internal/secrets"
	"jobsync-engine/internal/store"
	"jobsync-engine/internal/transport"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	srv     *httptest.Server
	db      *store.DB
	release chan struct{}
	cfgPath string
	runner  *search.Runner
}

func (e *env) runnerStarted() bool {
	return e.runner.Status().LastRunAt != "" || e.runner.Status().Running
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()

	db, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	cfg := config.Defaults()
	cfg.Backend.APIToken = "secret"
	cfg.Backend.Email = "me@example.com"
	cfg.Store.PostgresDSN = "postgres://jobs:hunter2@db/jobs"
	cfg.App.AllowedOrigins = []string{"chrome-extension://abc"}
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(cfgPath, cfg))
	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	clock := func() time.Time { return now }
	release := make(chan struct{})
	runner := search.NewRunner(search.Deps{
		NewNavigator: func() (navigate.Navigator, error) {
			<-release
			return &navigate.Static{Pages: map[string]string{}}, nil
		},
		Extractor: func() *extract.Extractor {
			return extract.New(extract.DefaultRules(), nil, extract.WithClock(clock))
		},
		LockPath: filepath.Join(dir, "search.lock"),
		Now:      clock,
	})

	keyring.MockInit()
	d := Deps{
		Store:       db,
		Hub:         events.NewHub(),
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
		Extractor: func() *extract.Extractor {
			return extract.New(extract.DefaultRules(), nil, extract.WithClock(clock))
		},
		Runner:  runner,
		BaseCtx: context.Background(),
		Keyring: secrets.Keyring{},
		SignIn: func(_ context.Context, _, email, password string) (string, error) {
			if password != "right" {
				return "", transport.ErrUnauthorized
			}
			return "tok-" + email, nil
		},
		Now: clock,
	}
	srv := httptest.NewServer(Handler(d, NewMux(d)))
	t.Cleanup(srv.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})
	return &env{srv: srv, db: db, release: release, cfgPath: cfgPath, runner: runner}
}

func (e *env) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, b
}

func errorCode(t *testing.T, b []byte) string {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(b, &e))
	return e.Error.Code
}

const batchBody = `{"job_listings":[
 {"external_id":"1","title":"Go Dev","company":"Acme","location":"Remote","url":"https://www.linkedin.com/jobs/view/1/","status":"new_listing"},
 {"external_id":"1","title":"Go Dev","company":"Acme","location":"Remote","url":"https://www.linkedin.com/jobs/view/1/"},
 {"external_id":"2","title":"SRE"}
]}`

func TestBatchEndpoint(t *testing.T) {
	e := newEnv(t)

	res, b := e.do(t, http.MethodPost, "/api/v1/job_listings/batch", "", batchBody)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "unauthorized", errorCode(t, b))

	res, _ = e.do(t, http.MethodPost, "/api/v1/job_listings/batch", "wrong", batchBody)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, b = e.do(t, http.MethodPost, "/api/v1/job_listings/batch", "secret", batchBody)
	require.Equal(t, http.StatusOK, res.StatusCode, string(b))
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	var out domain.BatchResult
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, 1, out.SavedCount)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, []string{"External has already been taken"}, out.Errors[0].Errors)
	assert.Equal(t, "2", out.Errors[1].ExternalID)
	assert.Contains(t, out.Errors[1].Errors, "Company can't be blank")

	res, b = e.do(t, http.MethodPost, "/api/v1/job_listings/batch", "secret", `{"job_listings":[]}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid_request", errorCode(t, b))
}

func TestListingLifecycle(t *testing.T) {
	e := newEnv(t)
	res, _ := e.do(t, http.MethodPost, "/api/v1/job_listings/batch", "secret", batchBody)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, b := e.do(t, http.MethodGet, "/api/v1/job_listings?window=all", "secret", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var ls []store.StoredListing
	require.NoError(t, json.Unmarshal(b, &ls))
	require.Len(t, ls, 1)
	id := ls[0].ID
	path := "/api/v1/job_listings/" + jsonNumber(id)

	res, b = e.do(t, http.MethodPatch, path, "secret", `{"job_listing":{"status":"interviewing"}}`)
	require.Equal(t, http.StatusOK, res.StatusCode, string(b))
	var got store.StoredListing
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, domain.StatusInterviewing, got.Status)

	res, b = e.do(t, http.MethodPatch, path, "secret", `{"job_listing":{"status":"hired"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "invalid_status", errorCode(t, b))

	res, _ = e.do(t, http.MethodDelete, path, "secret", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, b = e.do(t, http.MethodGet, path, "secret", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, b))

	res, _ = e.do(t, http.MethodGet, "/api/v1/job_listings/abc", "secret", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestExtractEndpoint(t *testing.T) {
	e := newEnv(t)

	page := `<html><body><h1 data-test-id="job-title">Data Analyst</h1>
<div data-test-id="job-details-company-name">Acme Co</div></body></html>`
	res, b := e.do(t, http.MethodPost, "/extract?job_id=555", "", page)
	require.Equal(t, http.StatusOK, res.StatusCode, string(b))

	var out extract.Result
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, domain.MethodDOM, out.Method)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "555", out.Records[0].ExternalID)
	assert.Equal(t, "Data Analyst", out.Records[0].Title)

	res, b = e.do(t, http.MethodPost, "/extract", "", "<html><body><p>nothing</p></body></html>")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, b))

	res, b = e.do(t, http.MethodGet, "/extract", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "method_not_allowed", errorCode(t, b))
}

func TestSearchRunRejectsSecondRun(t *testing.T) {
	e := newEnv(t)

	res, _ := e.do(t, http.MethodPost, "/search/run", "", "")
	assert.Equal(t, http.StatusAccepted, res.StatusCode)

	res, b := e.do(t, http.MethodPost, "/search/run", "", "")
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "already_running", errorCode(t, b))

	close(e.release)

	require.Eventually(t, func() bool {
		_, b := e.do(t, http.MethodGet, "/search/status", "", "")
		var st search.Status
		return json.Unmarshal(b, &st) == nil && !st.Running && st.LastRunAt != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSecretsBackend(t *testing.T) {
	e := newEnv(t)

	res, b := e.do(t, http.MethodPost, "/api/secrets/backend", "", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "unauthorized", errorCode(t, b))

	res, b = e.do(t, http.MethodPost, "/api/secrets/backend", "", `{"password":"right"}`)
	require.Equal(t, http.StatusOK, res.StatusCode, string(b))

	tok, err := secrets.KeyringTokens{Store: secrets.Keyring{}, Email: "me@example.com"}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-me@example.com", tok)

	res, _ = e.do(t, http.MethodDelete, "/api/secrets/backend", "", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	_, err = secrets.KeyringTokens{Store: secrets.Keyring{}, Email: "me@example.com"}.Token(context.Background())
	assert.True(t, errors.Is(err, secrets.ErrNotSignedIn))
}

func TestHealthAndConfig(t *testing.T) {
	e := newEnv(t)

	res, b := e.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"ok":true,"time":"2025-06-10T12:00:00Z","store":"sqlite"}`, string(b))

	res, b = e.do(t, http.MethodGet, "/config/validate", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var vr config.Validation
	require.NoError(t, json.Unmarshal(b, &vr))
	assert.Empty(t, vr.Errors)

	res, b = e.do(t, http.MethodPut, "/config", "", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid_json", errorCode(t, b))
}

func TestConfigKeepsSecretsServerSide(t *testing.T) {
	e := newEnv(t)

	res, b := e.do(t, http.MethodGet, "/config", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, string(b), "api_token")
	assert.NotContains(t, string(b), "hunter2")
	assert.NotContains(t, string(b), "postgres_dsn")

	// a round trip through the UI must not wipe them
	res, b = e.do(t, http.MethodPut, "/config", "", string(b))
	require.Equal(t, http.StatusOK, res.StatusCode, string(b))
	assert.NotContains(t, string(b), "secret")

	saved, err := config.Load(e.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "secret", saved.Backend.APIToken)
	assert.Equal(t, "postgres://jobs:hunter2@db/jobs", saved.Store.PostgresDSN)

	res, _ = e.do(t, http.MethodGet, "/api/v1/job_listings", "secret", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func (e *env) withOrigin(t *testing.T, method, path, origin string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = res.Body.Close()
	return res
}

func TestCorsAllowlist(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		origin string
		method string
		path   string
		want   int
		allow  bool
	}{
		{"tauri://localhost", http.MethodOptions, "/config", http.StatusNoContent, true},
		{"http://localhost:5173", http.MethodGet, "/health", http.StatusOK, true},
		{"http://127.0.0.1:8080", http.MethodGet, "/config", http.StatusOK, true},
		{"https://evil.example", http.MethodGet, "/config", http.StatusForbidden, false},
		{"https://evil.example", http.MethodPost, "/search/run", http.StatusForbidden, false},
		{"https://localhost.evil.example", http.MethodOptions, "/config", http.StatusForbidden, false},
		{"null", http.MethodGet, "/config", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.origin+" "+tt.method+" "+tt.path, func(t *testing.T) {
			res := e.withOrigin(t, tt.method, tt.path, tt.origin)
			assert.Equal(t, tt.want, res.StatusCode)
			if tt.allow {
				assert.Equal(t, tt.origin, res.Header.Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
	assert.False(t, e.runnerStarted(), "refused origin must not start a search")
}

func TestCorsPreflight(t *testing.T) {
	e := newEnv(t)
	req, _ := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/v1/job_listings", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "chrome-extension://abc", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	e := newEnv(t)
	req, err := http.NewRequest(http.MethodDelete, e.srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))

	var body APIError
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, ErrorDetail{Code: "method_not_allowed", Message: "method not allowed", RequestID: "req-42"}, body.Error)
}
