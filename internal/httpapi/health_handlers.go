package httpapi

import (
	"net/http"
	"time"

	"jobsync-engine/internal/store"
)

type HealthHandler struct {
	Store *store.DB
	Now   func() time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ok":   true,
		"time": h.Now().UTC().Format(time.RFC3339),
	}
	if h.Store != nil {
		out["store"] = h.Store.Dialect.String()
		if err := h.Store.Pool.PingContext(r.Context()); err != nil {
			out["ok"] = false
			out["error"] = err.Error()
			WriteJSON(w, http.StatusServiceUnavailable, out)
			return
		}
	}
	writeJSON(w, out)
}
