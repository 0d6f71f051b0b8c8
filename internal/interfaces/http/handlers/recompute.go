package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vellascocode/lookingglass/internal/persistence"
)

// Recompute triggers one partition computation. `?force=true` bypasses
// the refresh-interval guard. A guard rejection answers 429 with the
// survivor's updatedAt so callers can schedule the retry.
func (h *Handlers) Recompute(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	snap, err := h.refresher.Refresh(r.Context(), force)
	if err != nil {
		if errors.Is(err, persistence.ErrTooSoon) {
			resp := ErrorResponse{Success: false, Error: "too soon to update snapshot"}
			if snap != nil {
				t := snap.UpdatedAt
				resp.LastUpdated = &t
			}
			h.writeJSON(w, http.StatusTooManyRequests, resp)
			return
		}
		log.Error().Err(err).Bool("force", force).Msg("recompute failed")
		h.writeError(w, http.StatusInternalServerError, "partition computation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}
