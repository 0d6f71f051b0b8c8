package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "lookingglass"
	version = "v1.0.0"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Market tier partitioning engine",
		Version: version,
		Long: `lookingglass ingests ranked market pages, filters stable and wrapped
listings, partitions the rest into four disjoint tier buckets with
adaptive price-ceiling thresholds, and serves the resulting snapshot
over a small JSON API.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/lookingglass.yaml", "Path to YAML configuration")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the snapshot API server",
		Long:  "Starts the HTTP server with the snapshot, recompute, history, runall, health, and metrics endpoints. Optionally runs the background refresh loop.",
		RunE:  runServe,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one partition computation and print the buckets",
		Long:  "Fetches the ranked pages, computes the four tier buckets, commits the snapshot, and prints a bucket summary table.",
		RunE:  runScan,
	}
	scanCmd.Flags().Bool("force", false, "Bypass the refresh-interval guard")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
