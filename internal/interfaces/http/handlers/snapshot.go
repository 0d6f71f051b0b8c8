package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Snapshot serves the latest committed snapshot. It never triggers a
// partition computation; a first-ever read returns the seeded empty
// document.
func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reader.Snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("snapshot read failed")
		h.writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}
