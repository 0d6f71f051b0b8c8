package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vellascocode/lookingglass/internal/domain"
	"github.com/vellascocode/lookingglass/internal/persistence"
	"github.com/vellascocode/lookingglass/internal/persistence/cache"
)

// snapshotCacheKey is the single cache key readers share. Accepted
// commits delete it so the next read repopulates from the store.
const snapshotCacheKey = "lookingglass:snapshot:" + persistence.Slot

// Reader serves snapshot reads through a byte cache in front of the
// store. A cache miss falls through to the store's seeding Read, so the
// first-ever request still observes the lazily seeded empty snapshot.
type Reader struct {
	store persistence.SnapshotStore
	cache cache.Cache
	ttl   time.Duration
}

// NewReader wires the read path. cache may be nil to read straight
// through to the store.
func NewReader(store persistence.SnapshotStore, c cache.Cache, ttl time.Duration) *Reader {
	return &Reader{store: store, cache: c, ttl: ttl}
}

// Snapshot returns the latest committed snapshot, seeding on first read.
func (r *Reader) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	if r.cache != nil {
		if b, ok := r.cache.Get(ctx, snapshotCacheKey); ok {
			var snap domain.Snapshot
			if err := json.Unmarshal(b, &snap); err == nil {
				return &snap, nil
			}
			// Corrupt cache entry: drop it and fall through to the store.
			r.cache.Delete(ctx, snapshotCacheKey)
		}
	}

	snap, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if b, err := json.Marshal(snap); err == nil {
			r.cache.Set(ctx, snapshotCacheKey, b, r.ttl)
		} else {
			log.Warn().Err(err).Msg("snapshot cache encode failed")
		}
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next read hits the store.
func (r *Reader) Invalidate(ctx context.Context) {
	if r.cache != nil {
		r.cache.Delete(ctx, snapshotCacheKey)
	}
}
