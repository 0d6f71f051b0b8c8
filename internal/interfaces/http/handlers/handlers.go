// Package handlers implements the JSON endpoint handlers of the
// snapshot API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vellascocode/lookingglass/internal/application"
)

type contextKey string

// RequestIDKey carries the per-request identifier set by the server
// middleware.
const RequestIDKey contextKey = "request_id"

// Handlers manages all HTTP endpoint handlers.
type Handlers struct {
	reader    *application.Reader
	refresher *application.Refresher
	dbPing    func() error
}

// NewHandlers wires the endpoint handlers. dbPing may be nil when no
// database backs the store.
func NewHandlers(reader *application.Reader, refresher *application.Refresher, dbPing func() error) *Handlers {
	return &Handlers{reader: reader, refresher: refresher, dbPing: dbPing}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

// NotFound handles 404 responses.
func (h *Handlers) NotFound(w http.ResponseWriter, _ *http.Request) {
	h.writeError(w, http.StatusNotFound, "endpoint not found")
}
