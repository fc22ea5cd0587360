package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/josephlewis42/opsh/commands"
	"github.com/josephlewis42/opsh/core/config"
	"github.com/josephlewis42/opsh/core/monitor"
	"github.com/josephlewis42/opsh/core/signals"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

func loadConfig(logger *log.Logger) (*config.Configuration, error) {
	return config.LoadOrDefault(afero.NewOsFs(), cfgPath, logger)
}

// newShell builds a shell whose background builtins and monitor handshakes
// re-execute this binary.
func newShell(cfg *config.Configuration, logger *log.Logger) (*commands.Shell, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	s := commands.NewShell(cfg, commands.StdStreams(), logger)

	self := []string{exe, builtinCommandName, "--config", cfgPath}
	if debug {
		self = append(self, "--debug")
	}
	s.Executor.Self = self
	s.Bridge.Helper = monitor.SelfHelper(exe)

	return s, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opsh [BATCH_FILE]",
	Short: "Operator shell",
	Long: `An interactive shell with pipelines, background jobs and a
system monitor driven over a named pipe.

With BATCH_FILE, commands are read from the file instead of the terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := newLogger(cmd.ErrOrStderr())

		cfg, err := loadConfig(logger)
		if err != nil {
			return err
		}

		var batch *os.File
		if len(args) == 1 {
			batch, err = os.Open(args[0])
			if err != nil {
				return err
			}
			defer batch.Close()
		}

		s, err := newShell(cfg, logger)
		if err != nil {
			return err
		}

		router := signals.NewRouter(s.Foreground, logger)
		router.Start()
		defer router.Stop()

		s.Init()
		commands.PrintStartScreen(s.Stdout)

		if batch != nil {
			return s.RunBatch(batch)
		}
		return s.RunInteractive()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
