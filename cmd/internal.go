package cmd

import (
	"github.com/josephlewis42/opsh/core/monitor"
	"github.com/josephlewis42/opsh/core/shell"
	"github.com/josephlewis42/opsh/core/signals"
	"github.com/spf13/cobra"
)

const builtinCommandName = "__builtin"

// builtinCmd runs one builtin line as a background job of a parent shell.
var builtinCmd = &cobra.Command{
	Use:    builtinCommandName + " LINE",
	Short:  "Run a builtin command line in its own process.",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := newLogger(cmd.ErrOrStderr())

		cfg, err := loadConfig(logger)
		if err != nil {
			return err
		}

		s, err := newShell(cfg, logger)
		if err != nil {
			return err
		}
		s.Restore()

		router := signals.NewRouter(s.Foreground, logger)
		router.Start()
		defer router.Stop()

		parsed := shell.Parse(args[0])
		parsed.Background = false
		s.Executor.Execute(parsed)
		return nil
	},
}

// fifoWriteCmd writes the payload to the named pipe, blocking until the
// monitor opens it for reading.
var fifoWriteCmd = &cobra.Command{
	Use:    monitor.FIFOWriteCommand + " FIFO PAYLOAD",
	Short:  "Write a payload to a named pipe.",
	Hidden: true,
	Args:   cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		return monitor.WriteFIFO(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(builtinCmd)
	rootCmd.AddCommand(fifoWriteCmd)
}
