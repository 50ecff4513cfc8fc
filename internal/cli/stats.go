package cli

import (
	"context"
	"fmt"

	"smart-apply/internal/di"
	"smart-apply/internal/domain/entity"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show application totals from the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, err := cmd.Flags().GetInt("unfilled")
		if err != nil {
			return err
		}
		return stats(cmd.Context(), limit)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntP("unfilled", "u", 20, "also list this many recent unanswered form questions")
}

func stats(ctx context.Context, unfilled int) error {
	config, err := loadConfig(v)
	if err != nil {
		return err
	}

	c, err := di.NewContainer(ctx, config.container("stats"))
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := c.Ledger.AggregateStats(ctx)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	c.UI.ShowStats(s)

	if unfilled <= 0 {
		return nil
	}
	rows, err := c.Tracker.Recent(ctx, unfilled)
	if err != nil {
		return fmt.Errorf("read unfilled fields: %w", err)
	}
	records := make([]entity.UnfilledFieldRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.UnfilledFieldRecord)
	}
	c.UI.ShowUnfilled(records)
	return nil
}
