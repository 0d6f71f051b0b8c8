package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// History serves daily history for the configured watchlist.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	coins, err := h.refresher.History(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("history fetch failed")
		h.writeError(w, http.StatusInternalServerError, "failed to fetch watchlist history")
		return
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		Count:   len(coins),
		Coins:   coins,
	})
}
