package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vellascocode/lookingglass/internal/domain"
	"github.com/vellascocode/lookingglass/internal/persistence"
)

func runScan(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer eng.manager.Close()

	snap, err := eng.refresher.Refresh(cmd.Context(), force)
	if err != nil {
		if errors.Is(err, persistence.ErrTooSoon) {
			fmt.Printf("Too soon to update: last snapshot written %s (retry with --force)\n",
				snap.UpdatedAt.Format("15:04:05"))
			return nil
		}
		return err
	}

	fmt.Printf("\n%s — %s\n\n", appName, snap.MarketStatus)
	printBucket("Top by market cap", snap.TopMarketCap)
	printBucket("Top by momentum", snap.TopPerformance)
	printBucket(fmt.Sprintf("Best below $%.2f", snap.Threshold), snap.BestBelowThreshold)
	printBucket(fmt.Sprintf("Worst below $%.2f", snap.WorstThreshold), snap.WorstBelowThreshold)

	log.Info().Time("updated_at", snap.UpdatedAt).Msg("scan complete")
	return nil
}

func printBucket(title string, entries []domain.BucketEntry) {
	fmt.Println(title)
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "ID", "Symbol", "Price", "Mkt Cap", "24h %")

	for i, e := range entries {
		table.Append(
			fmt.Sprintf("%d", i+1),
			e.ID,
			e.Symbol,
			fmt.Sprintf("%.6g", e.Price),
			fmt.Sprintf("%.4g", e.MarketCap),
			fmt.Sprintf("%+.2f", e.PercentChange24h),
		)
	}
	table.Render()
	fmt.Println()
}
