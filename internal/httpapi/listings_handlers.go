package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/events"
	"jobsync-engine/internal/store"
)

const listingsPrefix = "/api/v1/job_listings/"

// ListingsHandler serves the backend-compatible job listing endpoints.
type ListingsHandler struct {
	Store *store.DB
	Hub   events.Publisher
	Now   func() time.Time
}

func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	ls, err := h.Store.ListListings(r.Context(), store.ListOpts{
		Sort:   q.Get("sort"),
		Window: q.Get("window"),
		Status: q.Get("status"),
		Limit:  limit,
	}, h.Now())
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "list_failed", err.Error())
		return
	}
	writeJSON(w, ls)
}

type batchReq struct {
	JobListings []domain.Listing `json:"job_listings"`
}

func (h ListingsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.JobListings) == 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "job_listings is required")
		return
	}

	res, err := h.Store.SaveBatch(r.Context(), req.JobListings, h.Now())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}
	if res.SavedCount > 0 {
		h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.ListingsSaved, res))
	}
	writeJSON(w, res)
}

func (h ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, listingsPrefix)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	l, err := h.Store.GetListing(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	writeJSON(w, l)
}

type statusReq struct {
	JobListing struct {
		Status *domain.Status `json:"status"`
	} `json:"job_listing"`
}

func (h ListingsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, listingsPrefix)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusUnprocessableEntity, "invalid_status", err.Error())
		return
	}
	if req.JobListing.Status == nil || !req.JobListing.Status.Valid() {
		WriteError(w, r, http.StatusUnprocessableEntity, "invalid_status", "Status is not included in the list")
		return
	}

	err := h.Store.UpdateStatus(r.Context(), id, *req.JobListing.Status)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}
	l, err := h.Store.GetListing(r.Context(), id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.ListingUpdated, map[string]any{"id": id, "status": l.Status}))
	writeJSON(w, l)
}

func (h ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, listingsPrefix)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	err := h.Store.DeleteListing(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.ListingDeleted, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
