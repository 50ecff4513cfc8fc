package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "smart-apply"

var (
	// Used for flags.
	cfgFile string

	v = newViper()

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "smart-apply finds Easy Apply jobs, picks the best résumé for each and submits the application",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return readConfig(v, cfgFile)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is smart-apply.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory for résumés, the ledger, logs and the browser profile")

	bindFlags(v, rootCmd, true, "debug", "json", "data-dir")
}

// bindFlags binds each named flag of cmd to the config key of the same name.
func bindFlags(v *viper.Viper, cmd *cobra.Command, persistent bool, names ...string) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for _, name := range names {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}
