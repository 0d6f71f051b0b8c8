package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/vellascocode/lookingglass/internal/domain"
)

// CoinGeckoConfig tunes the free-tier CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RPS            float64       `yaml:"rps"`
	Burst          int           `yaml:"burst"`
	UserAgent      string        `yaml:"user_agent"`

	// Circuit breaker settings.
	BreakerMaxRequests uint32        `yaml:"breaker_max_requests"`
	BreakerInterval    time.Duration `yaml:"breaker_interval"`
	BreakerTimeout     time.Duration `yaml:"breaker_timeout"`
	BreakerFailures    uint32        `yaml:"breaker_failures"`
}

// DefaultCoinGeckoConfig returns conservative free-tier settings.
func DefaultCoinGeckoConfig() CoinGeckoConfig {
	return CoinGeckoConfig{
		BaseURL:            "https://api.coingecko.com/api/v3",
		RequestTimeout:     10 * time.Second,
		RPS:                0.5,
		Burst:              3,
		UserAgent:          "lookingglass/1.0",
		BreakerMaxRequests: 1,
		BreakerInterval:    time.Minute,
		BreakerTimeout:     30 * time.Second,
		BreakerFailures:    5,
	}
}

// CoinGeckoProvider implements QuoteSource against the public markets
// API, behind a token-bucket limiter and a circuit breaker so a flapping
// upstream cannot be hammered.
type CoinGeckoProvider struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
}

// NewCoinGeckoProvider creates the provider from config.
func NewCoinGeckoProvider(config CoinGeckoConfig) *CoinGeckoProvider {
	settings := gobreaker.Settings{
		Name:        "coingecko",
		MaxRequests: config.BreakerMaxRequests,
		Interval:    config.BreakerInterval,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("quote source circuit state changed")
		},
	}

	return &CoinGeckoProvider{
		baseURL:   config.BaseURL,
		userAgent: config.UserAgent,
		client:    &http.Client{Timeout: config.RequestTimeout},
		limiter:   rate.NewLimiter(rate.Limit(config.RPS), config.Burst),
		breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

// FetchByMarketCap returns one page ordered by descending market cap.
func (p *CoinGeckoProvider) FetchByMarketCap(ctx context.Context, pageSize int) ([]domain.Instrument, error) {
	return p.fetchMarkets(ctx, "market_cap_desc", pageSize)
}

// FetchByMomentum returns one page ordered by 24h percent change.
func (p *CoinGeckoProvider) FetchByMomentum(ctx context.Context, pageSize int, dir MomentumDirection) ([]domain.Instrument, error) {
	return p.fetchMarkets(ctx, string(dir), pageSize)
}

func (p *CoinGeckoProvider) fetchMarkets(ctx context.Context, order string, pageSize int) ([]domain.Instrument, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("price_change_percentage", "1h,24h,7d")
	params.Set("order", order)
	params.Set("per_page", fmt.Sprintf("%d", pageSize))
	params.Set("page", "1")

	var instruments []domain.Instrument
	if err := p.getJSON(ctx, "/coins/markets", params, &instruments); err != nil {
		return nil, err
	}

	log.Debug().
		Str("order", order).
		Int("count", len(instruments)).
		Msg("market page retrieved")
	return instruments, nil
}

// FetchMarketChart returns days of daily history for one instrument.
func (p *CoinGeckoProvider) FetchMarketChart(ctx context.Context, id string, days int) (*domain.MarketChart, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", fmt.Sprintf("%d", days))
	params.Set("interval", "daily")

	var chart domain.MarketChart
	if err := p.getJSON(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params, &chart); err != nil {
		return nil, err
	}

	log.Debug().
		Str("id", id).
		Int("points", len(chart.Prices)).
		Msg("market chart retrieved")
	return &chart, nil
}

func (p *CoinGeckoProvider) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrSourceUnavailable, err)
	}

	fullURL := fmt.Sprintf("%s%s?%s", p.baseURL, endpoint, params.Encode())

	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := p.client.Do(req)
		if err != nil {
			log.Error().Err(err).Str("endpoint", endpoint).Msg("quote source request failed")
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			log.Warn().
				Str("endpoint", endpoint).
				Str("retry_after", resp.Header.Get("Retry-After")).
				Msg("quote source rate limit hit")
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %v", err)
		}

		log.Debug().
			Str("endpoint", endpoint).
			Dur("duration", time.Since(start)).
			Msg("quote source request complete")
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, endpoint, err)
	}
	return nil
}

var _ QuoteSource = (*CoinGeckoProvider)(nil)
