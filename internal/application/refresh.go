// Package application orchestrates one partition computation: pull the
// ranked pages from the quote source, classify and deduplicate, run the
// partitioner, and hand the result to the snapshot store for a
// rate-limit-checked upsert.
package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vellascocode/lookingglass/internal/domain"
	"github.com/vellascocode/lookingglass/internal/domain/classifier"
	"github.com/vellascocode/lookingglass/internal/domain/partition"
	"github.com/vellascocode/lookingglass/internal/infrastructure/providers"
	"github.com/vellascocode/lookingglass/internal/persistence"
	"github.com/vellascocode/lookingglass/internal/persistence/cache"
	"github.com/vellascocode/lookingglass/internal/telemetry/metrics"
)

// Config carries the pipeline knobs.
type Config struct {
	TopCapPageSize     int           `yaml:"top_cap_page_size"`
	MomentumPageSize   int           `yaml:"momentum_page_size"`
	MinRefreshInterval time.Duration `yaml:"min_refresh_interval"`
	Watchlist          []string      `yaml:"watchlist"`
	HistoryDays        int           `yaml:"history_days"`
}

// DefaultConfig returns the production pipeline settings.
func DefaultConfig() Config {
	return Config{
		TopCapPageSize:     50,
		MomentumPageSize:   200,
		MinRefreshInterval: 14 * time.Minute,
		Watchlist: []string{
			"bitcoin", "ethereum", "binancecoin", "solana", "cardano",
			"polygon", "dogecoin", "ripple", "polkadot",
		},
		HistoryDays: 15,
	}
}

// Refresher runs partition computations against injected collaborators.
type Refresher struct {
	cfg         Config
	source      providers.QuoteSource
	registry    *classifier.Registry
	partitioner *partition.Partitioner
	store       persistence.SnapshotStore
	cache       cache.Cache
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewRefresher wires the pipeline. metrics may be nil.
func NewRefresher(cfg Config, source providers.QuoteSource, registry *classifier.Registry,
	partitioner *partition.Partitioner, store persistence.SnapshotStore, m *metrics.Metrics) *Refresher {
	return &Refresher{
		cfg:         cfg,
		source:      source,
		registry:    registry,
		partitioner: partitioner,
		store:       store,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the refresher clock and returns the refresher.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

// WithCache makes accepted commits invalidate the shared snapshot cache
// entry so readers see the new document immediately.
func (r *Refresher) WithCache(c cache.Cache) *Refresher {
	r.cache = c
	return r
}

// Refresh runs one full partition computation. When force is false the
// refresh-interval guard is checked before any page is fetched, so a
// too-soon trigger never touches the quote source. The returned snapshot
// is the committed one on success, or the surviving prior snapshot
// alongside persistence.ErrTooSoon.
func (r *Refresher) Refresh(ctx context.Context, force bool) (*domain.Snapshot, error) {
	start := r.now()

	if !force {
		prior, err := r.store.Latest(ctx)
		if err != nil {
			r.count(metrics.OutcomeStoreError)
			return nil, err
		}
		if prior != nil && r.now().Sub(prior.UpdatedAt) <= r.cfg.MinRefreshInterval {
			r.count(metrics.OutcomeTooSoon)
			return prior, persistence.ErrTooSoon
		}
	}

	byCap, pageDesc, pageAsc, err := r.fetchPages(ctx)
	if err != nil {
		r.count(metrics.OutcomeSourceError)
		return nil, err
	}

	pool := partition.MergeUnique(r.registry.Filter(pageDesc), r.registry.Filter(pageAsc))
	res := r.partitioner.Partition(r.registry.Filter(byCap), pool)

	minInterval := r.cfg.MinRefreshInterval
	if force {
		minInterval = 0
	}
	committed, err := r.store.TryCommit(ctx, assemble(res), minInterval)
	if err != nil {
		if errors.Is(err, persistence.ErrTooSoon) {
			r.count(metrics.OutcomeTooSoon)
			return committed, err
		}
		r.count(metrics.OutcomeStoreError)
		return nil, err
	}

	r.count(metrics.OutcomeAccepted)
	if r.cache != nil {
		r.cache.Delete(ctx, snapshotCacheKey)
	}
	if r.metrics != nil {
		r.metrics.RefreshDuration.Observe(r.now().Sub(start).Seconds())
		r.metrics.ObserveBuckets(len(res.TopMarketCap), len(res.TopMomentum),
			len(res.BestBelowThreshold), len(res.WorstBelowThreshold))
	}

	log.Info().
		Int("top_cap", len(res.TopMarketCap)).
		Int("top_momentum", len(res.TopMomentum)).
		Int("best", len(res.BestBelowThreshold)).
		Int("worst", len(res.WorstBelowThreshold)).
		Float64("best_threshold", res.BestThreshold).
		Float64("worst_threshold", res.WorstThreshold).
		Str("market_status", res.MarketStatus).
		Msg("snapshot committed")

	return committed, nil
}

// fetchPages issues the three ranked-page fetches concurrently; all must
// complete before partitioning begins and any failure aborts the pass.
func (r *Refresher) fetchPages(ctx context.Context) (byCap, pageDesc, pageAsc []domain.Instrument, err error) {
	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		byCap, errs[0] = r.source.FetchByMarketCap(ctx, r.cfg.TopCapPageSize)
	}()
	go func() {
		defer wg.Done()
		pageDesc, errs[1] = r.source.FetchByMomentum(ctx, r.cfg.MomentumPageSize, providers.MomentumDescending)
	}()
	go func() {
		defer wg.Done()
		pageAsc, errs[2] = r.source.FetchByMomentum(ctx, r.cfg.MomentumPageSize, providers.MomentumAscending)
	}()
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			r.countSource(false)
			return nil, nil, nil, e
		}
	}
	r.countSource(true)
	return byCap, pageDesc, pageAsc, nil
}

// History fetches daily history for every watchlist instrument. All
// fetches must succeed; a single failure fails the call.
func (r *Refresher) History(ctx context.Context) ([]domain.ChartedInstrument, error) {
	out := make([]domain.ChartedInstrument, len(r.cfg.Watchlist))
	errs := make([]error, len(r.cfg.Watchlist))

	var wg sync.WaitGroup
	for i, id := range r.cfg.Watchlist {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			chart, err := r.source.FetchMarketChart(ctx, id, r.cfg.HistoryDays)
			if err != nil {
				errs[i] = err
				return
			}
			out[i] = domain.ChartedInstrument{ID: id, Name: id, Symbol: id, History: chart}
		}(i, id)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return out, nil
}

// RunLoop triggers a guarded refresh every tick until the context ends.
// Too-soon rejections are the expected steady state between intervals.
func (r *Refresher) RunLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Refresh(ctx, false); err != nil {
				if errors.Is(err, persistence.ErrTooSoon) {
					log.Debug().Msg("scheduled refresh skipped: too soon")
					continue
				}
				log.Error().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

func (r *Refresher) count(outcome string) {
	if r.metrics != nil {
		r.metrics.RefreshOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (r *Refresher) countSource(ok bool) {
	if r.metrics == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.metrics.SourceRequests.WithLabelValues(result).Inc()
}

// assemble builds the candidate snapshot from a partition result. The
// store stamps createdAt/updatedAt on commit.
func assemble(res *partition.Result) *domain.Snapshot {
	return &domain.Snapshot{
		Success:             true,
		TopMarketCap:        partition.Entries(res.TopMarketCap),
		TopPerformance:      partition.Entries(res.TopMomentum),
		BestBelowThreshold:  partition.Entries(res.BestBelowThreshold),
		WorstBelowThreshold: partition.Entries(res.WorstBelowThreshold),
		Threshold:           res.BestThreshold,
		WorstThreshold:      res.WorstThreshold,
		MarketStatus:        res.MarketStatus,
		Counts: domain.Counts{
			TopMarketCap:        len(res.TopMarketCap),
			TopPerformance:      len(res.TopMomentum),
			BestBelowThreshold:  len(res.BestBelowThreshold),
			WorstBelowThreshold: len(res.WorstBelowThreshold),
			PositiveTop12:       res.PositiveMomentum,
		},
	}
}
