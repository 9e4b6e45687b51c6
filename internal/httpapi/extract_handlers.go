package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"jobsync-engine/internal/events"
	"jobsync-engine/internal/extract"
)

type ExtractHandler struct {
	Extractor func() *extract.Extractor
	Hub       events.Publisher
}

// Extract runs the pipeline over an HTML body. ?job_id= narrows it to one job.
func (h ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.URL.Query().Get("job_id"))
	body := http.MaxBytesReader(w, r.Body, 16<<20)

	res, err := h.Extractor().ExtractHTML(body, jobID)
	if errors.Is(err, extract.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_html", err.Error())
		return
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.ExtractFinished, map[string]any{
		"method": res.Method, "count": len(res.Records),
	}))
	writeJSON(w, res)
}
