package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/josephlewis42/opsh/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// initCmd writes the default settings
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings to the config path.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := newLogger(cmd.ErrOrStderr())
		logger.SetLevel(log.InfoLevel)

		return config.Initialize(afero.NewOsFs(), cfgPath, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
