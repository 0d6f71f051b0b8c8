// Package postgres implements the snapshot store on a single-row slot
// table. Seeding uses ON CONFLICT DO NOTHING so concurrent first reads
// degenerate to one insert, and commits compare-and-swap on the prior
// updated_at so a stale writer loses deterministically.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vellascocode/lookingglass/internal/domain"
	"github.com/vellascocode/lookingglass/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshot_slot (
    slot       TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

type snapshotRepo struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// NewSnapshotRepo creates the Postgres-backed snapshot store.
func NewSnapshotRepo(db *sqlx.DB, timeout time.Duration) persistence.SnapshotStore {
	return &snapshotRepo{
		db:      db,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the slot table if it does not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: ensure snapshot schema: %v", persistence.ErrStoreUnavailable, err)
	}
	return nil
}

// Latest returns the stored snapshot, or nil when the slot has never
// been written.
func (r *snapshotRepo) Latest(ctx context.Context) (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := r.readSlot(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %v", persistence.ErrStoreUnavailable, err)
	}
	return snap, nil
}

func (r *snapshotRepo) Read(ctx context.Context) (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := r.readSlot(ctx)
	if err == nil {
		return snap, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("%w: read snapshot: %v", persistence.ErrStoreUnavailable, err)
	}

	// First-ever read: seed the slot. DO NOTHING keeps a racing seeder
	// from writing a second document.
	seed := domain.EmptySnapshot(r.now())
	doc, err := json.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("marshal seed snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshot_slot (slot, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot) DO NOTHING`,
		persistence.Slot, doc, seed.CreatedAt, seed.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: seed snapshot: %v", persistence.ErrStoreUnavailable, err)
	}

	snap, err = r.readSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read after seed: %v", persistence.ErrStoreUnavailable, err)
	}
	return snap, nil
}

func (r *snapshotRepo) TryCommit(ctx context.Context, candidate *domain.Snapshot, minInterval time.Duration) (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := r.now()
	prior, err := r.readSlot(ctx)
	switch {
	case err == sql.ErrNoRows:
		prior = nil
	case err != nil:
		return nil, fmt.Errorf("%w: read prior snapshot: %v", persistence.ErrStoreUnavailable, err)
	}

	committed := *candidate
	committed.UpdatedAt = now

	if prior == nil {
		if committed.CreatedAt.IsZero() {
			committed.CreatedAt = now
		}
		doc, err := json.Marshal(&committed)
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot: %w", err)
		}
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO snapshot_slot (slot, doc, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slot) DO NOTHING`,
			persistence.Slot, doc, committed.CreatedAt, committed.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: insert snapshot: %v", persistence.ErrStoreUnavailable, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Lost the race to another first writer.
			return r.rejected(ctx)
		}
		return &committed, nil
	}

	if now.Sub(prior.UpdatedAt) <= minInterval {
		return prior, persistence.ErrTooSoon
	}

	committed.CreatedAt = prior.CreatedAt
	doc, err := json.Marshal(&committed)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	// CAS on the prior updated_at: if a parallel computation already
	// replaced the slot, zero rows match and this commit is rejected.
	res, err := r.db.ExecContext(ctx, `
		UPDATE snapshot_slot
		SET doc = $1, updated_at = $2
		WHERE slot = $3 AND updated_at = $4`,
		doc, committed.UpdatedAt, persistence.Slot, prior.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: update snapshot: %v", persistence.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.rejected(ctx)
	}
	return &committed, nil
}

// rejected re-reads the slot and reports the winning snapshot with
// ErrTooSoon so racing callers see the same outcome as a guard rejection.
func (r *snapshotRepo) rejected(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := r.readSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read winning snapshot: %v", persistence.ErrStoreUnavailable, err)
	}
	return snap, persistence.ErrTooSoon
}

func (r *snapshotRepo) readSlot(ctx context.Context) (*domain.Snapshot, error) {
	var row struct {
		Doc       []byte    `db:"doc"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT doc, created_at, updated_at
		FROM snapshot_slot
		WHERE slot = $1`, persistence.Slot)
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(row.Doc, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot doc: %w", err)
	}
	// The columns are the source of truth for the timestamps.
	snap.CreatedAt = row.CreatedAt
	snap.UpdatedAt = row.UpdatedAt
	return &snap, nil
}
