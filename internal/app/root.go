package app

import (
	"github.com/spf13/cobra"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
)

// NewRootCommand returns the graphload command tree. embedded is the
// configuration compiled into the binary.
func NewRootCommand(embedded config.EmbeddedConfig) *cobra.Command {
	opts := &Options{Config: embedded}
	var configFile string

	cmd := &cobra.Command{
		Use:           "graphload",
		Short:         "graphload streams line-delimited JSON dumps into Dgraph.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return nil
			}
			data, err := config.ReadConfigFile(configFile)
			if err != nil {
				return err
			}
			opts.Config = data
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file replacing the embedded one")
	cmd.PersistentFlags().StringVar(&opts.EnvFilePath, "env-file", ".env", ".env file loaded before the configuration")

	cmd.AddCommand(
		dropCmd(opts),
		schemaCmd(opts),
		loadCmd(opts),
		regenerateCmd(opts),
		queryCmd(opts),
		historyCmd(opts),
	)
	return cmd
}
