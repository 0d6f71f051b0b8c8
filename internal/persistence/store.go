// Package persistence defines the snapshot store contract. The store
// holds exactly one snapshot document under a well-known slot; commits
// replace it wholesale, never mutate it partially.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/vellascocode/lookingglass/internal/domain"
)

// Slot is the single well-known key the snapshot lives under.
const Slot = "market"

var (
	// ErrTooSoon signals that a commit was rejected by the refresh-interval
	// guard. It is an expected outcome, not a failure.
	ErrTooSoon = errors.New("too soon to update snapshot")

	// ErrStoreUnavailable wraps persistence-layer failures on read or write.
	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)

// SnapshotStore persists the most recent successful partition result.
type SnapshotStore interface {
	// Latest returns the stored snapshot, or nil when the slot has never
	// been written. It never seeds.
	Latest(ctx context.Context) (*domain.Snapshot, error)

	// Read returns the latest committed snapshot. If none exists it
	// atomically seeds and returns a default empty snapshot; concurrent
	// first reads must not create two seed documents.
	Read(ctx context.Context) (*domain.Snapshot, error)

	// TryCommit replaces the stored snapshot with candidate unless the
	// prior snapshot is younger than minInterval, in which case it
	// returns the prior snapshot together with ErrTooSoon. On success it
	// preserves the original createdAt and stamps a fresh updatedAt,
	// returning the committed snapshot.
	TryCommit(ctx context.Context, candidate *domain.Snapshot, minInterval time.Duration) (*domain.Snapshot, error)
}
