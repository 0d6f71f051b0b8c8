// Package memory provides an in-process snapshot store with the same
// semantics as the Postgres slot: lazy idempotent seeding and an
// interval-guarded, createdAt-preserving commit. It backs tests and the
// no-database deployment mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vellascocode/lookingglass/internal/domain"
	"github.com/vellascocode/lookingglass/internal/persistence"
)

type Store struct {
	mu      sync.Mutex
	current *domain.Snapshot
	seeds   int

	now func() time.Time
}

// New returns an empty store. The clock is wall time; tests may override
// it with WithClock.
func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the store clock and returns the store.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// SeedWrites reports how many seed documents were ever written.
func (s *Store) SeedWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeds
}

func (s *Store) Latest(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, nil
	}
	return clone(s.current), nil
}

func (s *Store) Read(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		s.current = domain.EmptySnapshot(s.now())
		s.seeds++
	}
	return clone(s.current), nil
}

func (s *Store) TryCommit(_ context.Context, candidate *domain.Snapshot, minInterval time.Duration) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	committed := clone(candidate)
	committed.UpdatedAt = now

	if s.current == nil {
		if committed.CreatedAt.IsZero() {
			committed.CreatedAt = now
		}
		s.current = committed
		return clone(committed), nil
	}

	if now.Sub(s.current.UpdatedAt) <= minInterval {
		return clone(s.current), persistence.ErrTooSoon
	}

	committed.CreatedAt = s.current.CreatedAt
	s.current = committed
	return clone(committed), nil
}

var _ persistence.SnapshotStore = (*Store)(nil)

func clone(in *domain.Snapshot) *domain.Snapshot {
	out := *in
	out.TopMarketCap = append([]domain.BucketEntry(nil), in.TopMarketCap...)
	out.TopPerformance = append([]domain.BucketEntry(nil), in.TopPerformance...)
	out.BestBelowThreshold = append([]domain.BucketEntry(nil), in.BestBelowThreshold...)
	out.WorstBelowThreshold = append([]domain.BucketEntry(nil), in.WorstBelowThreshold...)
	return &out
}
