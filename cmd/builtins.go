package cmd

import (
	"fmt"

	"github.com/josephlewis42/opsh/commands"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands of the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, entry := range commands.Manual() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", entry.Name, entry.Description)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
