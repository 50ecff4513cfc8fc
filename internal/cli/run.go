package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-apply/internal/di"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover jobs and apply to them until the daily cap is reached",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", true, "walk the wizard but never press submit")
	runCmd.Flags().Bool("headless", false, "run the browser without a window")
	runCmd.Flags().Int("max-jobs", 0, "stop after this many jobs (0 means only the daily cap applies)")

	bindFlags(v, runCmd, false, "dry-run", "headless")
	if err := v.BindPFlag("search.max-jobs", runCmd.Flags().Lookup("max-jobs")); err != nil {
		panic(fmt.Sprintf("binding flag max-jobs: %v", err))
	}
}

// run owns the process lifetime: SIGINT or SIGTERM cancels the session, the
// in-flight attempt is still recorded and the browser is closed on the way out.
func run(parent context.Context) error {
	config, err := loadConfig(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := di.NewContainer(ctx, config.container("run"))
	if err != nil {
		return err
	}
	defer c.Close()

	start := time.Now()
	c.Logger.Info("Starting smart-apply",
		"dry_run", config.DryRun,
		"config", v.ConfigFileUsed())

	if err := c.BuildSession(ctx); err != nil {
		c.Logger.Error("Failed to start session", "error", err)
		return err
	}

	summary, err := c.Session.Run(ctx)
	if err != nil {
		c.Logger.Error("Session aborted", "error", err)
		return err
	}
	if summary.Canceled {
		c.Logger.Warn("Session interrupted", "attempted", summary.Attempted)
	}
	c.Logger.Info("Done", "elapsed", time.Since(start).Round(time.Second))
	return nil
}
