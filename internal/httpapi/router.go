package httpapi

import (
	"log/slog"
	"net/http"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Store: d.Store, Now: d.now}.Health,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal, Keyring: d.Keyring, SignIn: d.SignIn, Log: d.Log}
	mux.HandleFunc("/api/secrets/backend", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetBackend,
		http.MethodDelete: sh.DeleteBackend,
	}))

	// Extraction
	xh := ExtractHandler{Extractor: d.Extractor, Hub: d.Hub}
	mux.HandleFunc("/extract", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.Extract,
	}))

	// Search
	srh := SearchHandler{CfgVal: d.CfgVal, Runner: d.Runner, BaseCtx: d.BaseCtx}
	mux.HandleFunc("/search/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: srh.Status,
	}))
	mux.HandleFunc("/search/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: srh.Run,
	}))
	mux.HandleFunc("/search/cancel", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: srh.Cancel,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: DBHandler{Store: d.Store}.Checkpoint,
	}))

	// Backend-compatible listing endpoints
	auth := RequireToken(func() string { return d.cfg().Backend.APIToken })
	lh := ListingsHandler{Store: d.Store, Hub: d.Hub, Now: d.now}
	mux.Handle("/api/v1/job_listings", auth(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	})))
	mux.Handle("/api/v1/job_listings/batch", auth(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: lh.Batch,
	})))
	mux.Handle(listingsPrefix, auth(methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    lh.Get,
		http.MethodPatch:  lh.UpdateStatus,
		http.MethodDelete: lh.Delete,
	})))

	return mux
}

// Handler wraps the mux with the standard middleware chain.
func Handler(d Deps, mux http.Handler) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	origins := func() []string { return d.cfg().App.AllowedOrigins }
	return Chain(mux, RequestID, Recover(d.Log), AccessLog(d.Log), Cors(origins))
}
