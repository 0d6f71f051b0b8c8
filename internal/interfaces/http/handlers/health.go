package handlers

import (
	"net/http"
	"time"
)

// Health reports component liveness: the snapshot store is probed with a
// read, the database with a ping when one is configured.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}
	healthy := true

	if _, err := h.reader.Snapshot(r.Context()); err != nil {
		components["store"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		components["store"] = "healthy"
	}

	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			components["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			components["database"] = "healthy"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, HealthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now().UTC(),
	})
}
