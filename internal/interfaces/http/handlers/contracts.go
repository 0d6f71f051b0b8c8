package handlers

import (
	"time"

	"github.com/vellascocode/lookingglass/internal/application"
	"github.com/vellascocode/lookingglass/internal/domain"
)

// ErrorResponse is the standard error body. LastUpdated is set only on
// refresh-guard rejections so callers can compute the retry point.
type ErrorResponse struct {
	Success     bool       `json:"success"`
	Error       string     `json:"error"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// HistoryResponse carries daily history for the configured watchlist.
type HistoryResponse struct {
	Success bool                       `json:"success"`
	Count   int                        `json:"count"`
	Coins   []domain.ChartedInstrument `json:"coins"`
}

// RunAllResponse reports the maintenance batch. Served with 207 when any
// step failed.
type RunAllResponse struct {
	Success   bool                     `json:"success"`
	Steps     []application.StepResult `json:"steps"`
	Timestamp time.Time                `json:"timestamp"`
}

// HealthResponse reports component liveness.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}
