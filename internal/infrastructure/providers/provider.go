// Package providers implements the quote-source collaborators. The
// engine never calls market APIs directly; everything goes through the
// QuoteSource interface so the partition pipeline can be tested against
// fixed pages.
package providers

import (
	"context"
	"errors"

	"github.com/vellascocode/lookingglass/internal/domain"
)

// MomentumDirection selects the 24h percent-change ordering of a
// momentum page.
type MomentumDirection string

const (
	MomentumDescending MomentumDirection = "price_change_percentage_24h_desc"
	MomentumAscending  MomentumDirection = "price_change_percentage_24h_asc"
)

// ErrSourceUnavailable wraps any fetch failure: transport errors, bad
// status codes, and malformed bodies. A partition computation aborts
// wholesale on it; the previously persisted snapshot keeps serving.
var ErrSourceUnavailable = errors.New("quote source unavailable")

// QuoteSource supplies ranked instrument pages and per-instrument daily
// history. Implementations return raw numeric fields without filtering.
type QuoteSource interface {
	FetchByMarketCap(ctx context.Context, pageSize int) ([]domain.Instrument, error)
	FetchByMomentum(ctx context.Context, pageSize int, dir MomentumDirection) ([]domain.Instrument, error)
	FetchMarketChart(ctx context.Context, id string, days int) (*domain.MarketChart, error)
}
