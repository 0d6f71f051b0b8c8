package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellascocode/lookingglass/internal/application"
	"github.com/vellascocode/lookingglass/internal/domain"
	"github.com/vellascocode/lookingglass/internal/domain/classifier"
	"github.com/vellascocode/lookingglass/internal/domain/partition"
	"github.com/vellascocode/lookingglass/internal/infrastructure/providers"
	"github.com/vellascocode/lookingglass/internal/persistence/memory"
)

type stubSource struct {
	err error
}

func (s *stubSource) FetchByMarketCap(_ context.Context, _ int) ([]domain.Instrument, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Instrument
	for i := 0; i < 20; i++ {
		out = append(out, domain.Instrument{
			ID: fmt.Sprintf("cap-%02d", i), Symbol: "c", Name: "c",
			Price: 100, MarketCap: float64(2000 - i), PercentChange24h: 1,
		})
	}
	return out, nil
}

func (s *stubSource) FetchByMomentum(_ context.Context, _ int, dir providers.MomentumDirection) ([]domain.Instrument, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Instrument
	for i := 0; i < 30; i++ {
		pct := float64(30 - i)
		if dir == providers.MomentumAscending {
			pct = -pct
		}
		out = append(out, domain.Instrument{
			ID: fmt.Sprintf("%s-%02d", dir, i), Symbol: "m", Name: "m",
			Price: 0.005, MarketCap: 10, PercentChange24h: pct,
		})
	}
	return out, nil
}

func (s *stubSource) FetchMarketChart(_ context.Context, _ string, _ int) (*domain.MarketChart, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.MarketChart{Prices: [][2]float64{{1, 2}}}, nil
}

func newTestHandlers(src providers.QuoteSource, dbPing func() error) *Handlers {
	store := memory.New()
	reader := application.NewReader(store, nil, 0)
	refresher := application.NewRefresher(application.DefaultConfig(), src,
		classifier.DefaultRegistry(), partition.New(partition.DefaultConfig()), store, nil)
	return NewHandlers(reader, refresher, dbPing)
}

func get(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSnapshot_ServesSeededDocument(t *testing.T) {
	h := newTestHandlers(&stubSource{}, nil)

	rec := get(t, h.Snapshot, "/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, field := range []string{
		"success", "top15MarketCap", "top12Performance",
		"bestBelowThreshold", "worstBelowThreshold",
		"counts", "threshold", "worstThreshold", "marketStatus", "updatedAt",
	} {
		assert.Contains(t, body, field)
	}

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.MarketStatusUndefined, snap.MarketStatus)
	assert.Empty(t, snap.TopMarketCap)
}

func TestRecompute_CommitsThenGuards(t *testing.T) {
	h := newTestHandlers(&stubSource{}, nil)

	rec := get(t, h.Recompute, "/recompute")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.Success)
	assert.Len(t, snap.TopMarketCap, 15)
	assert.Len(t, snap.TopPerformance, 12)

	// Immediate retrigger lands inside the guard window.
	rec = get(t, h.Recompute, "/recompute")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.False(t, errResp.Success)
	assert.NotEmpty(t, errResp.Error)
	require.NotNil(t, errResp.LastUpdated)
	assert.Equal(t, snap.UpdatedAt.Unix(), errResp.LastUpdated.Unix())
}

func TestRecompute_ForceBypassesGuard(t *testing.T) {
	h := newTestHandlers(&stubSource{}, nil)

	rec := get(t, h.Recompute, "/recompute")
	require.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(5 * time.Millisecond)
	rec = get(t, h.Recompute, "/recompute?force=true")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecompute_SourceFailureAnswers500(t *testing.T) {
	h := newTestHandlers(&stubSource{err: providers.ErrSourceUnavailable}, nil)

	rec := get(t, h.Recompute, "/recompute")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.False(t, errResp.Success)
	assert.NotEmpty(t, errResp.Error)
}

func TestHistory_ServesWatchlist(t *testing.T) {
	h := newTestHandlers(&stubSource{}, nil)

	rec := get(t, h.History, "/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 9, resp.Count)
	assert.Len(t, resp.Coins, 9)
}

func TestRunAll_ReportsSteps(t *testing.T) {
	h := newTestHandlers(&stubSource{}, nil)

	rec := get(t, h.RunAll, "/runall")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunAllResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Steps, 3)
}

func TestRunAll_PartialFailureIs207(t *testing.T) {
	h := newTestHandlers(&stubSource{err: errors.New("upstream down")}, nil)

	rec := get(t, h.RunAll, "/runall")
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var resp RunAllResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestHealth_ReportsComponents(t *testing.T) {
	h := newTestHandlers(&stubSource{}, func() error { return nil })

	rec := get(t, h.Health, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["store"])
	assert.Equal(t, "healthy", resp.Components["database"])
}

func TestHealth_DatabaseFailureIs503(t *testing.T) {
	h := newTestHandlers(&stubSource{}, func() error { return errors.New("connection refused") })

	rec := get(t, h.Health, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Components["database"], "unhealthy")
}
