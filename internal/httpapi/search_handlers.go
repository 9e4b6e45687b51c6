package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/search"
)

type SearchHandler struct {
	CfgVal  *atomic.Value // stores config.Config
	Runner  *search.Runner
	BaseCtx context.Context
}

func (h SearchHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

func (h SearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	err := h.Runner.Start(h.BaseCtx, search.OptionsFromConfig(cfg))
	if errors.Is(err, search.ErrAlreadyRunning) {
		WriteError(w, r, http.StatusConflict, "already_running", "already running")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "start_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (h SearchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"ok": h.Runner.Cancel()})
}
