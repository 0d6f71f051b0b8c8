// Package config loads the engine configuration: YAML file first, then
// environment overrides. A missing file is not an error; defaults cover
// every field so the binary runs with zero configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vellascocode/lookingglass/internal/application"
	"github.com/vellascocode/lookingglass/internal/infrastructure/db"
	"github.com/vellascocode/lookingglass/internal/infrastructure/providers"
	httpserver "github.com/vellascocode/lookingglass/internal/interfaces/http"
)

// CacheConfig controls the snapshot read cache.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// Config is the full engine configuration.
type Config struct {
	Server    httpserver.ServerConfig   `yaml:"server"`
	Quotes    providers.CoinGeckoConfig `yaml:"quotes"`
	Pipeline  application.Config        `yaml:"pipeline"`
	Database  db.Config                 `yaml:"database"`
	Cache     CacheConfig               `yaml:"cache"`
	LogLevel  string                    `yaml:"log_level"`
	Scheduler SchedulerConfig           `yaml:"scheduler"`
}

// SchedulerConfig controls the background refresh loop.
type SchedulerConfig struct {
	Enabled bool          `yaml:"enabled"`
	Every   time.Duration `yaml:"every"`
}

// Defaults returns the zero-configuration setup: in-memory store, no
// Redis, guarded 14-minute refresh.
func Defaults() Config {
	return Config{
		Server:   httpserver.DefaultServerConfig(),
		Quotes:   providers.DefaultCoinGeckoConfig(),
		Pipeline: application.DefaultConfig(),
		Database: db.DefaultConfig(),
		Cache:    CacheConfig{TTL: 30 * time.Second},
		LogLevel: "info",
		Scheduler: SchedulerConfig{
			Enabled: false,
			Every:   time.Minute,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), overlays .env, and applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults carry the run.
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config YAML: %w", err)
			}
		}
	}

	// .env values become process env without clobbering real env vars.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("HTTP_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
		cfg.Database.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("QUOTES_BASE_URL"); v != "" {
		cfg.Quotes.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Quotes.BaseURL == "" {
		return fmt.Errorf("quotes base URL must not be empty")
	}
	if c.Pipeline.MinRefreshInterval < 0 {
		return fmt.Errorf("min refresh interval must not be negative")
	}
	if c.Pipeline.TopCapPageSize <= 0 || c.Pipeline.MomentumPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database enabled but DSN is empty")
	}
	if c.Scheduler.Enabled && c.Scheduler.Every <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	return nil
}
