package domain

import "time"

// Instrument is one quoted market asset as returned by the quote source.
// Fields mirror the raw market feed and are never persisted directly.
type Instrument struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Image            string  `json:"image"`
	Price            float64 `json:"current_price"`
	MarketCap        float64 `json:"market_cap"`
	Rank             int     `json:"market_cap_rank"`
	Volume           float64 `json:"total_volume"`
	Change24h        float64 `json:"price_change_24h"`
	PercentChange24h float64 `json:"price_change_percentage_24h"`
}

// BucketEntry is the trimmed projection of an Instrument that gets
// persisted inside a Snapshot and served to readers.
type BucketEntry struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Image            string  `json:"image"`
	Price            float64 `json:"price"`
	MarketCap        float64 `json:"marketCap"`
	Rank             int     `json:"rank"`
	Volume           float64 `json:"volume"`
	Change24h        float64 `json:"change24h"`
	PercentChange24h float64 `json:"percentChange24h"`
}

// NewBucketEntry projects an Instrument into its persisted form.
func NewBucketEntry(in Instrument) BucketEntry {
	return BucketEntry{
		ID:               in.ID,
		Symbol:           in.Symbol,
		Name:             in.Name,
		Image:            in.Image,
		Price:            in.Price,
		MarketCap:        in.MarketCap,
		Rank:             in.Rank,
		Volume:           in.Volume,
		Change24h:        in.Change24h,
		PercentChange24h: in.PercentChange24h,
	}
}

// Counts summarizes bucket sizes for dashboard consumers.
type Counts struct {
	TopMarketCap        int `json:"top15MarketCap"`
	TopPerformance      int `json:"top12Performance"`
	BestBelowThreshold  int `json:"bestBelowThreshold"`
	WorstBelowThreshold int `json:"worstBelowThreshold"`
	PositiveTop12       int `json:"positiveTop12"`
}

// Market condition labels served in Snapshot.MarketStatus. The strings are
// part of the wire contract and must not change.
const (
	MarketStatusDown      = "Market down: few positives, filled with least negatives"
	MarketStatusOK        = "Market OK: all positives"
	MarketStatusUndefined = "undefined"
)

// Snapshot is the single persisted result of one partition pass. All four
// bucket lists are pairwise disjoint by instrument ID.
type Snapshot struct {
	Success             bool          `json:"success"`
	TopMarketCap        []BucketEntry `json:"top15MarketCap"`
	TopPerformance      []BucketEntry `json:"top12Performance"`
	BestBelowThreshold  []BucketEntry `json:"bestBelowThreshold"`
	WorstBelowThreshold []BucketEntry `json:"worstBelowThreshold"`
	Threshold           float64       `json:"threshold"`
	WorstThreshold      float64       `json:"worstThreshold"`
	MarketStatus        string        `json:"marketStatus"`
	Counts              Counts        `json:"counts"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// EmptySnapshot returns the seed document written on first-ever read:
// empty buckets, zero thresholds, placeholder market status.
func EmptySnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Success:             true,
		TopMarketCap:        []BucketEntry{},
		TopPerformance:      []BucketEntry{},
		BestBelowThreshold:  []BucketEntry{},
		WorstBelowThreshold: []BucketEntry{},
		MarketStatus:        MarketStatusUndefined,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// MarketChart holds daily history series for one instrument, as
// [timestampMillis, value] pairs straight from the quote source.
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// ChartedInstrument pairs basic instrument identity with its history,
// served by the watchlist history endpoint.
type ChartedInstrument struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Symbol  string       `json:"symbol"`
	History *MarketChart `json:"history"`
}
