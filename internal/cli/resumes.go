package cli

import (
	"context"
	"fmt"

	"smart-apply/internal/di"

	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "List the parsed résumés available for matching",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reload, err := cmd.Flags().GetBool("reload")
		if err != nil {
			return err
		}
		return resumes(cmd.Context(), reload)
	},
}

func init() {
	rootCmd.AddCommand(resumesCmd)

	resumesCmd.Flags().BoolP("reload", "r", false, "ignore the cache and parse every PDF again")
}

func resumes(ctx context.Context, reload bool) error {
	config, err := loadConfig(v)
	if err != nil {
		return err
	}

	c, err := di.NewContainer(ctx, config.container("resumes"))
	if err != nil {
		return err
	}
	defer c.Close()

	if reload {
		if err := c.Resumes.Reload(ctx); err != nil {
			return fmt.Errorf("reload resumes: %w", err)
		}
	}

	all, err := c.Resumes.AllWithMetadata(ctx)
	if err != nil {
		return err
	}
	c.UI.ShowResumes(all)
	return nil
}
