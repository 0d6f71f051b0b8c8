package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) CoinGeckoConfig {
	cfg := DefaultCoinGeckoConfig()
	cfg.BaseURL = baseURL
	cfg.RPS = 1000
	cfg.Burst = 1000
	cfg.BreakerFailures = 100
	cfg.RequestTimeout = time.Second
	return cfg
}

const marketsBody = `[
	{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png",
	 "current_price":64250.12,"market_cap":1267000000000,"market_cap_rank":1,
	 "total_volume":31400000000,"price_change_24h":-810.4,"price_change_percentage_24h":-1.25},
	{"id":"solana","symbol":"sol","name":"Solana","image":"https://img/sol.png",
	 "current_price":152.4,"market_cap":70400000000,"market_cap_rank":5,
	 "total_volume":2900000000,"price_change_24h":6.1,"price_change_percentage_24h":4.17}
]`

func TestFetchByMarketCap_DecodesRawFields(t *testing.T) {
	var gotOrder, gotPerPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coins/markets", r.URL.Path)
		gotOrder = r.URL.Query().Get("order")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Write([]byte(marketsBody))
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(testConfig(srv.URL))
	instruments, err := p.FetchByMarketCap(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, "market_cap_desc", gotOrder)
	assert.Equal(t, "50", gotPerPage)
	require.Len(t, instruments, 2)
	assert.Equal(t, "bitcoin", instruments[0].ID)
	assert.Equal(t, 64250.12, instruments[0].Price)
	assert.Equal(t, 1, instruments[0].Rank)
	assert.Equal(t, -1.25, instruments[0].PercentChange24h)
	assert.Equal(t, "https://img/sol.png", instruments[1].Image)
}

func TestFetchByMomentum_PassesDirection(t *testing.T) {
	var gotOrder string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrder = r.URL.Query().Get("order")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(testConfig(srv.URL))

	_, err := p.FetchByMomentum(context.Background(), 200, MomentumAscending)
	require.NoError(t, err)
	assert.Equal(t, "price_change_percentage_24h_asc", gotOrder)

	_, err = p.FetchByMomentum(context.Background(), 200, MomentumDescending)
	require.NoError(t, err)
	assert.Equal(t, "price_change_percentage_24h_desc", gotOrder)
}

func TestFetchMarketChart_DecodesSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("days"))
		w.Write([]byte(`{
			"prices":[[1700000000000,64000.5],[1700086400000,64250.1]],
			"market_caps":[[1700000000000,1260000000000]],
			"total_volumes":[[1700000000000,30000000000]]
		}`))
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(testConfig(srv.URL))
	chart, err := p.FetchMarketChart(context.Background(), "bitcoin", 15)
	require.NoError(t, err)

	require.Len(t, chart.Prices, 2)
	assert.Equal(t, 64250.1, chart.Prices[1][1])
	assert.Len(t, chart.MarketCaps, 1)
	assert.Len(t, chart.TotalVolumes, 1)
}

func TestFetch_ServerErrorSurfacesAsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(testConfig(srv.URL))
	_, err := p.FetchByMarketCap(context.Background(), 50)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetch_RateLimitedSurfacesAsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(testConfig(srv.URL))
	_, err := p.FetchByMarketCap(context.Background(), 50)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetch_MalformedBodySurfacesAsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(testConfig(srv.URL))
	_, err := p.FetchByMarketCap(context.Background(), 50)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BreakerFailures = 3
	p := NewCoinGeckoProvider(cfg)

	for i := 0; i < 5; i++ {
		_, err := p.FetchByMarketCap(context.Background(), 50)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	}

	// The breaker opened after the third failure; later calls fail fast
	// without reaching the server.
	assert.Equal(t, 3, hits)
}
