package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StepResult records one step of a maintenance batch.
type StepResult struct {
	Key        string `json:"key"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"durationMs"`
	Summary    string `json:"summary,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult is the outcome of a full maintenance run. Success is true
// only when every step succeeded.
type BatchResult struct {
	Success bool         `json:"success"`
	Steps   []StepResult `json:"steps"`
}

// RunAll executes the full maintenance batch in order: watchlist
// history, a forced partition recompute, and a snapshot read-back. Steps
// run even when earlier ones fail so one bad collaborator does not hide
// the state of the others.
func (r *Refresher) RunAll(ctx context.Context, reader *Reader) *BatchResult {
	res := &BatchResult{Success: true}

	res.add(r.runStep(ctx, "history", func(ctx context.Context) (string, error) {
		charted, err := r.History(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fetched history for %d instruments", len(charted)), nil
	}))

	res.add(r.runStep(ctx, "recompute", func(ctx context.Context) (string, error) {
		snap, err := r.Refresh(ctx, true)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("committed snapshot, market status %q", snap.MarketStatus), nil
	}))

	res.add(r.runStep(ctx, "snapshot", func(ctx context.Context) (string, error) {
		snap, err := reader.Snapshot(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("snapshot updated at %s", snap.UpdatedAt.Format(time.RFC3339)), nil
	}))

	return res
}

func (r *Refresher) runStep(ctx context.Context, key string, fn func(context.Context) (string, error)) StepResult {
	start := r.now()
	summary, err := fn(ctx)
	step := StepResult{
		Key:        key,
		Success:    err == nil,
		DurationMs: r.now().Sub(start).Milliseconds(),
		Summary:    summary,
	}
	if err != nil {
		step.Error = err.Error()
		log.Warn().Str("step", key).Err(err).Msg("batch step failed")
	}
	return step
}

func (b *BatchResult) add(step StepResult) {
	b.Steps = append(b.Steps, step)
	if !step.Success {
		b.Success = false
	}
}
