package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/secrets"
	"jobsync-engine/internal/transport"
)

type SecretsHandler struct {
	CfgVal  *atomic.Value // stores config.Config
	Keyring secrets.Store
	SignIn  func(ctx context.Context, baseURL, email, password string) (string, error)
	Log     *slog.Logger
}

type backendCredentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetBackend signs in to the backend and keeps the token and password in
// the OS keychain.
func (h SecretsHandler) SetBackend(w http.ResponseWriter, r *http.Request) {
	var req backendCredentialsReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	cfg := h.CfgVal.Load().(config.Config)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = cfg.Backend.Email
	}
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	token, err := h.SignIn(r.Context(), cfg.Backend.BaseURL, email, req.Password)
	if errors.Is(err, transport.ErrUnauthorized) {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid email or password")
		return
	}
	if err != nil {
		h.Log.Warn("backend sign in failed", "email", email, "err", err)
		WriteError(w, r, http.StatusBadGateway, "backend_unavailable", err.Error())
		return
	}

	if err := secrets.SetPassword(h.Keyring, email, req.Password); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", "failed to store password: "+err.Error())
		return
	}
	if err := secrets.SetToken(h.Keyring, email, token); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", "failed to store token: "+err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "email": email})
}

func (h SecretsHandler) DeleteBackend(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		email = cfg.Backend.Email
	}
	if err := secrets.SignOut(h.Keyring, email); err != nil {
		WriteError(w, r, http.StatusBadRequest, "sign_out_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
