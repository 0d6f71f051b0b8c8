package partition

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellascocode/lookingglass/internal/domain"
)

func capInst(id string, cap float64) domain.Instrument {
	return domain.Instrument{ID: id, Symbol: id, Name: id, Price: 100, MarketCap: cap, PercentChange24h: 50}
}

func buildPool() (byCap, pool []domain.Instrument) {
	for i := 0; i < 20; i++ {
		byCap = append(byCap, capInst(fmt.Sprintf("cap-%02d", i), float64(2000-i)))
	}
	// The first five cap leaders also show up in the momentum pages with
	// huge gains; exclusivity must keep them out of the momentum bucket.
	for i := 0; i < 5; i++ {
		pool = append(pool, inst(fmt.Sprintf("cap-%02d", i), 100, 500))
	}
	for i := 0; i < 12; i++ {
		pool = append(pool, inst(fmt.Sprintf("mom-%02d", i), 5.0, float64(100+i)))
	}
	for i := 0; i < 20; i++ {
		pool = append(pool, inst(fmt.Sprintf("cheap-%02d", i), 0.005, float64(1+i)))
	}
	for i := 0; i < 10; i++ {
		pool = append(pool, inst(fmt.Sprintf("neg-%02d", i), 0.005, float64(-1-i)))
	}
	return byCap, pool
}

func idSet(ins []domain.Instrument) map[string]struct{} {
	s := make(map[string]struct{}, len(ins))
	for _, in := range ins {
		s[in.ID] = struct{}{}
	}
	return s
}

func assertDisjoint(t *testing.T, res *Result) {
	t.Helper()
	buckets := [][]domain.Instrument{
		res.TopMarketCap, res.TopMomentum, res.BestBelowThreshold, res.WorstBelowThreshold,
	}
	for i := 0; i < len(buckets); i++ {
		for j := i + 1; j < len(buckets); j++ {
			other := idSet(buckets[j])
			for _, in := range buckets[i] {
				_, clash := other[in.ID]
				assert.False(t, clash, "instrument %s appears in buckets %d and %d", in.ID, i, j)
			}
		}
	}
}

func TestPartition_FourDisjointBuckets(t *testing.T) {
	byCap, pool := buildPool()
	res := New(DefaultConfig()).Partition(byCap, pool)

	require.Len(t, res.TopMarketCap, 15)
	require.Len(t, res.TopMomentum, 12)
	require.Len(t, res.BestBelowThreshold, 15)
	require.Len(t, res.WorstBelowThreshold, 15)
	assertDisjoint(t, res)

	// Cap leaders with extreme momentum stay in the cap bucket only.
	assert.Equal(t, "cap-00", res.TopMarketCap[0].ID)
	for _, in := range res.TopMomentum {
		assert.NotContains(t, in.ID, "cap-")
	}
	assert.Equal(t, "mom-11", res.TopMomentum[0].ID)

	// Both threshold buckets resolved at the first rung.
	assert.Equal(t, 0.01, res.BestThreshold)
	assert.Equal(t, 0.01, res.WorstThreshold)
	assert.Equal(t, "cheap-19", res.BestBelowThreshold[0].ID)
	assert.Equal(t, "neg-09", res.WorstBelowThreshold[0].ID)

	assert.Equal(t, 12, res.PositiveMomentum)
	assert.Equal(t, domain.MarketStatusOK, res.MarketStatus)
}

func TestPartition_Ordering(t *testing.T) {
	byCap, pool := buildPool()
	res := New(DefaultConfig()).Partition(byCap, pool)

	for i := 1; i < len(res.TopMarketCap); i++ {
		assert.Greater(t, res.TopMarketCap[i-1].MarketCap, res.TopMarketCap[i].MarketCap)
	}
	for i := 1; i < len(res.TopMomentum); i++ {
		assert.GreaterOrEqual(t, res.TopMomentum[i-1].PercentChange24h, res.TopMomentum[i].PercentChange24h)
	}
	for i := 1; i < len(res.BestBelowThreshold); i++ {
		assert.GreaterOrEqual(t, res.BestBelowThreshold[i-1].PercentChange24h, res.BestBelowThreshold[i].PercentChange24h)
	}
	for i := 1; i < len(res.WorstBelowThreshold); i++ {
		assert.LessOrEqual(t, res.WorstBelowThreshold[i-1].PercentChange24h, res.WorstBelowThreshold[i].PercentChange24h)
	}
}

func TestPartition_FewPositivesBackfilled(t *testing.T) {
	var pool []domain.Instrument
	for i := 0; i < 5; i++ {
		pool = append(pool, inst(fmt.Sprintf("up-%d", i), 5.0, float64(10+i)))
	}
	for i := 0; i < 10; i++ {
		pool = append(pool, inst(fmt.Sprintf("down-%d", i), 5.0, float64(-1-i)))
	}

	res := New(DefaultConfig()).Partition(nil, pool)

	require.Len(t, res.TopMomentum, 12)
	assert.Equal(t, 5, res.PositiveMomentum)
	assert.Equal(t, domain.MarketStatusDown, res.MarketStatus)

	// Gainers first, then the least-negative movers.
	assert.Equal(t, "up-4", res.TopMomentum[0].ID)
	assert.Equal(t, "down-0", res.TopMomentum[5].ID)
	assert.Equal(t, "down-6", res.TopMomentum[11].ID)
}

func TestPartition_EmptyInputs(t *testing.T) {
	res := New(DefaultConfig()).Partition(nil, nil)

	assert.Empty(t, res.TopMarketCap)
	assert.Empty(t, res.TopMomentum)
	assert.Empty(t, res.BestBelowThreshold)
	assert.Empty(t, res.WorstBelowThreshold)
	assert.Equal(t, 0.01, res.BestThreshold)
	assert.Equal(t, 0.01, res.WorstThreshold)
	assert.Equal(t, domain.MarketStatusDown, res.MarketStatus)
}

func TestPartition_ShortCapPage(t *testing.T) {
	byCap := []domain.Instrument{capInst("cap-a", 100), capInst("cap-b", 90)}
	res := New(DefaultConfig()).Partition(byCap, nil)
	assert.Len(t, res.TopMarketCap, 2)
}

func TestMergeUnique_FirstOccurrenceWins(t *testing.T) {
	desc := []domain.Instrument{inst("a", 1, 5), inst("b", 1, 4)}
	asc := []domain.Instrument{inst("b", 1, -4), inst("c", 1, -9)}

	merged := MergeUnique(desc, asc)
	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, 4.0, merged[1].PercentChange24h, "desc page copy of b wins")
	assert.Equal(t, "c", merged[2].ID)
}
