// Package partition implements the four-bucket market tier computation:
// top by market cap, top by momentum, and the two adaptive below-threshold
// buckets. Buckets are built strictly in that order, each step removing
// its selections from the pool, which is what makes the four identifier
// sets pairwise disjoint.
package partition

import (
	"sort"

	"github.com/vellascocode/lookingglass/internal/domain"
)

// Config carries the tuning knobs of the partitioner. The specific values
// are configuration, not algorithmic necessity.
type Config struct {
	TopMarketCapSize int
	TopMomentumSize  int
	ThresholdTarget  int
	Ladder           Ladder
}

// DefaultConfig returns the production bucket sizes and ladder.
func DefaultConfig() Config {
	return Config{
		TopMarketCapSize: 15,
		TopMomentumSize:  12,
		ThresholdTarget:  15,
		Ladder:           NewLadder(0.01, 0.05, 1.00),
	}
}

// Result is the outcome of one partition pass over an already classified
// instrument pool.
type Result struct {
	TopMarketCap        []domain.Instrument
	TopMomentum         []domain.Instrument
	BestBelowThreshold  []domain.Instrument
	WorstBelowThreshold []domain.Instrument
	BestThreshold       float64
	WorstThreshold      float64
	PositiveMomentum    int
	MarketStatus        string
}

// Partitioner computes tier buckets from classified instruments. It is
// pure CPU work on fetched data; all I/O happens before it runs.
type Partitioner struct {
	cfg Config
}

func New(cfg Config) *Partitioner {
	return &Partitioner{cfg: cfg}
}

// Partition consumes the filtered top-by-cap page and the filtered,
// deduplicated momentum pool and produces the four disjoint buckets.
func (p *Partitioner) Partition(byCap, pool []domain.Instrument) *Result {
	res := &Result{}
	used := make(map[string]struct{})

	// 1. Top by market cap.
	capSorted := append([]domain.Instrument(nil), byCap...)
	sort.SliceStable(capSorted, func(i, j int) bool {
		return capSorted[i].MarketCap > capSorted[j].MarketCap
	})
	res.TopMarketCap = take(capSorted, p.cfg.TopMarketCapSize)
	mark(used, res.TopMarketCap)

	// 2. Top by momentum, excluding everything already placed.
	perf := exclude(pool, used)
	sortByPercentChange(perf, Descending)
	res.TopMomentum = take(perf, p.cfg.TopMomentumSize)
	mark(used, res.TopMomentum)
	for _, in := range res.TopMomentum {
		if in.PercentChange24h > 0 {
			res.PositiveMomentum++
		}
	}

	// 3. Best below threshold.
	res.BestBelowThreshold, res.BestThreshold =
		p.cfg.Ladder.Search(exclude(pool, used), p.cfg.ThresholdTarget, Descending)
	mark(used, res.BestBelowThreshold)

	// 4. Worst below threshold.
	res.WorstBelowThreshold, res.WorstThreshold =
		p.cfg.Ladder.Search(exclude(pool, used), p.cfg.ThresholdTarget, Ascending)

	// 5. Market condition label.
	if res.PositiveMomentum < p.cfg.TopMomentumSize {
		res.MarketStatus = domain.MarketStatusDown
	} else {
		res.MarketStatus = domain.MarketStatusOK
	}

	return res
}

// MergeUnique merges the two momentum pages, deduplicating by identifier.
// The first occurrence of an identifier wins, so page order matters.
func MergeUnique(pages ...[]domain.Instrument) []domain.Instrument {
	seen := make(map[string]struct{})
	var merged []domain.Instrument
	for _, page := range pages {
		for _, in := range page {
			if _, ok := seen[in.ID]; ok {
				continue
			}
			seen[in.ID] = struct{}{}
			merged = append(merged, in)
		}
	}
	return merged
}

func take(ins []domain.Instrument, n int) []domain.Instrument {
	if len(ins) > n {
		ins = ins[:n]
	}
	return ins
}

func mark(used map[string]struct{}, ins []domain.Instrument) {
	for _, in := range ins {
		used[in.ID] = struct{}{}
	}
}

func exclude(pool []domain.Instrument, used map[string]struct{}) []domain.Instrument {
	out := make([]domain.Instrument, 0, len(pool))
	for _, in := range pool {
		if _, ok := used[in.ID]; !ok {
			out = append(out, in)
		}
	}
	return out
}

// Entries projects a bucket into its persisted form.
func Entries(ins []domain.Instrument) []domain.BucketEntry {
	out := make([]domain.BucketEntry, 0, len(ins))
	for _, in := range ins {
		out = append(out, domain.NewBucketEntry(in))
	}
	return out
}
