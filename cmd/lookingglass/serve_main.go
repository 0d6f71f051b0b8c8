package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vellascocode/lookingglass/internal/application"
	"github.com/vellascocode/lookingglass/internal/config"
	"github.com/vellascocode/lookingglass/internal/domain/classifier"
	"github.com/vellascocode/lookingglass/internal/domain/partition"
	"github.com/vellascocode/lookingglass/internal/infrastructure/db"
	"github.com/vellascocode/lookingglass/internal/infrastructure/providers"
	httpserver "github.com/vellascocode/lookingglass/internal/interfaces/http"
	"github.com/vellascocode/lookingglass/internal/interfaces/http/handlers"
	"github.com/vellascocode/lookingglass/internal/persistence/cache"
	"github.com/vellascocode/lookingglass/internal/telemetry/metrics"
)

// engine bundles the wired collaborators shared by serve and scan.
type engine struct {
	cfg       config.Config
	manager   *db.Manager
	reader    *application.Reader
	refresher *application.Refresher
	registry  *prometheus.Registry
}

func buildEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setLogLevel(cfg.LogLevel)

	manager, err := db.NewManager(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	store := manager.Store()
	c := cache.NewAuto(cfg.Cache.RedisAddr)
	reader := application.NewReader(store, c, cfg.Cache.TTL)
	refresher := application.NewRefresher(
		cfg.Pipeline,
		providers.NewCoinGeckoProvider(cfg.Quotes),
		classifier.DefaultRegistry(),
		partition.New(partition.DefaultConfig()),
		store,
		m,
	).WithCache(c)

	log.Info().
		Bool("postgres", manager.IsEnabled()).
		Bool("redis", cfg.Cache.RedisAddr != "").
		Str("quotes", cfg.Quotes.BaseURL).
		Msg("engine wired")

	return &engine{
		cfg:       cfg,
		manager:   manager,
		reader:    reader,
		refresher: refresher,
		registry:  registry,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.manager.Close()

	var dbPing func() error
	if eng.manager.IsEnabled() {
		dbPing = func() error { return eng.manager.Ping(ctx) }
	}

	h := handlers.NewHandlers(eng.reader, eng.refresher, dbPing)
	srv := httpserver.NewServer(eng.cfg.Server, h, eng.registry)

	if eng.cfg.Scheduler.Enabled {
		go eng.refresher.RunLoop(ctx, eng.cfg.Scheduler.Every)
		log.Info().Dur("every", eng.cfg.Scheduler.Every).Msg("background refresh loop started")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
