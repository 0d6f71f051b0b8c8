package handlers

import (
	"net/http"
	"time"
)

// RunAll executes the full maintenance batch and reports per-step
// results. Any failed step downgrades the status to 207 while the
// remaining steps still run.
func (h *Handlers) RunAll(w http.ResponseWriter, r *http.Request) {
	res := h.refresher.RunAll(r.Context(), h.reader)

	status := http.StatusOK
	if !res.Success {
		status = http.StatusMultiStatus
	}
	h.writeJSON(w, status, RunAllResponse{
		Success:   res.Success,
		Steps:     res.Steps,
		Timestamp: time.Now().UTC(),
	})
}
