// Package classifier decides whether a quoted instrument is noise: a
// stable-value asset or a wrapped/bridged/staked derivative of another
// asset. It is a pure predicate over a Registry and touches no I/O.
package classifier

import (
	"strings"

	"github.com/vellascocode/lookingglass/internal/domain"
)

// Reason explains why an instrument was excluded from ranking.
type Reason string

const (
	ReasonNone    Reason = "none"
	ReasonStable  Reason = "stable"
	ReasonWrapped Reason = "wrapped"
)

// Classification is the outcome of one classify call.
type Classification struct {
	Excluded bool
	Reason   Reason
}

// Classify applies the registry rules in order, first match wins:
// exempt IDs pass, malformed records are dropped, then the stable test,
// then the wrapped test.
func (r *Registry) Classify(in domain.Instrument) Classification {
	id := strings.ToLower(in.ID)

	if id == "" {
		// A record without a stable identifier cannot participate in
		// dedup or disjointness, so it is dropped rather than aborting
		// the whole batch.
		return Classification{Excluded: true, Reason: ReasonNone}
	}

	if _, ok := r.Exempt[id]; ok {
		return Classification{Excluded: false, Reason: ReasonNone}
	}

	name := strings.ToLower(in.Name)
	symbol := strings.ToLower(in.Symbol)

	if r.isStable(id, name, symbol, in.Price) {
		return Classification{Excluded: true, Reason: ReasonStable}
	}
	if r.isWrapped(id, name, symbol) {
		return Classification{Excluded: true, Reason: ReasonWrapped}
	}
	return Classification{Excluded: false, Reason: ReasonNone}
}

func (r *Registry) isStable(id, name, symbol string, price float64) bool {
	if _, ok := r.StableIDs[id]; ok {
		return true
	}
	if _, ok := r.StableIDs[symbol]; ok {
		return true
	}
	if r.StableNameRe.MatchString(name) || r.StableSymbolRe.MatchString(symbol) {
		return true
	}
	return price >= r.StableBandLow && price <= r.StableBandHigh
}

func (r *Registry) isWrapped(id, name, symbol string) bool {
	if _, ok := r.WrappedIDs[id]; ok {
		return true
	}
	if _, ok := r.WrappedIDs[symbol]; ok {
		return true
	}
	for _, re := range r.WrappedRes {
		if re.MatchString(id) || re.MatchString(name) || re.MatchString(symbol) {
			return true
		}
	}
	return false
}

// Filter returns the instruments that survive classification, preserving
// input order.
func (r *Registry) Filter(ins []domain.Instrument) []domain.Instrument {
	kept := make([]domain.Instrument, 0, len(ins))
	for _, in := range ins {
		if c := r.Classify(in); !c.Excluded {
			kept = append(kept, in)
		}
	}
	return kept
}
