package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/charmbracelet/log"
	"github.com/josephlewis42/opsh/core/config"
	"github.com/josephlewis42/opsh/core/executor"
	"github.com/josephlewis42/opsh/core/jobs"
	"github.com/josephlewis42/opsh/core/monitor"
	"github.com/josephlewis42/opsh/core/shell"
	"github.com/josephlewis42/opsh/core/signals"
	"github.com/spf13/afero"
)

const (
	EnvHome = "HOME"
	EnvUser = "USER"
)

// Streams are the standard streams the shell and its children use.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Shell owns the state shared by the control loop and the builtins.
type Shell struct {
	Config *config.Configuration
	Logger *log.Logger
	Fs     afero.Fs

	Jobs       *jobs.Table
	Foreground *signals.Foreground
	Executor   *executor.Executor
	Bridge     *monitor.Bridge

	// Catalog lists every metric the monitor offers.
	Catalog *monitor.Catalog
	// Monitor is the current monitor configuration, nil until one is loaded
	// or created.
	Monitor *config.MonitorConfig

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Set to true to quit the shell
	Quit bool
}

// NewShell creates a shell using cfg. Callers set Executor.Self and
// Bridge.Helper to enable background builtins and the monitor handshakes.
func NewShell(cfg *config.Configuration, streams Streams, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Shell{
		Config:     cfg,
		Logger:     logger,
		Fs:         cfg.Fs(),
		Foreground: &signals.Foreground{},
		Catalog:    monitor.NewCatalog(),
		Stdin:      streams.Stdin,
		Stdout:     streams.Stdout,
		Stderr:     streams.Stderr,
	}

	s.Jobs = jobs.NewTable(cfg.MaxJobs, jobs.WithOutput(streams.Stdout))

	s.Executor = executor.New(s, s.Jobs, s.Foreground, logger)
	s.Executor.Fs = s.Fs
	s.Executor.Stdin = streams.Stdin
	s.Executor.Stdout = streams.Stdout
	s.Executor.Stderr = streams.Stderr

	s.Bridge = monitor.NewBridge(cfg.FIFOPath, cfg.MonitorPath, nil, logger)
	s.Bridge.Stdout = streams.Stdout
	s.Bridge.Stderr = streams.Stderr

	return s
}

// Init runs the monitor once to learn the available metrics, selects all
// of them and writes the monitor configuration. Failures are reported and
// leave the shell usable.
func (s *Shell) Init() {
	if err := s.Bridge.Bootstrap(); err != nil {
		fmt.Fprintf(s.Stderr, "monitor bootstrap failed: %v\n", err)
	}

	s.loadCatalog()

	s.Monitor = config.NewMonitorConfig(s.Config.DefaultInterval, s.Catalog.Names())
	s.saveMonitorConfig()
}

// Restore loads the state a previous shell left behind, it is used by child
// processes running a single builtin.
func (s *Shell) Restore() {
	s.loadCatalog()

	mc, err := config.ReadMonitorConfig(s.Fs, s.Config.MonitorConfigPath)
	if err != nil {
		s.Logger.Debug("monitor config not restored", "error", err)
		return
	}
	s.Monitor = mc
}

func (s *Shell) loadCatalog() {
	catalog, err := monitor.LoadCatalog(s.Fs, s.Config.MetricsPath)
	if err != nil {
		s.Logger.Warn("no metrics available", "error", err)
		return
	}
	s.Catalog = catalog
	s.Logger.Debug("metrics loaded", "count", catalog.Len())
}

// monitorConfig returns the current monitor configuration, creating an empty
// one if none is loaded.
func (s *Shell) monitorConfig() *config.MonitorConfig {
	if s.Monitor == nil {
		s.Monitor = config.NewMonitorConfig(s.Config.DefaultInterval, nil)
	}
	return s.Monitor
}

func (s *Shell) saveMonitorConfig() {
	if err := config.WriteMonitorConfig(s.Fs, s.Config.MonitorConfigPath, s.monitorConfig()); err != nil {
		fmt.Fprintf(s.Stderr, "%v\n", err)
	}
}

// RunLine parses and executes a single line of input.
func (s *Shell) RunLine(line string) {
	s.Executor.Execute(shell.Parse(line))
}

// RunBuiltin implements executor.Builtins.
func (s *Shell) RunBuiltin(cmd *shell.Command, stdout io.Writer) int {
	builtin, ok := AllBuiltins[cmd.Name()]
	if !ok {
		fmt.Fprintf(s.Stderr, "Unknown internal command: %s\n", cmd.Name())
		return 1
	}

	return builtin.Main(s, &Invocation{
		Args:      cmd.Argv,
		InputPath: cmd.InputPath,
		Stdout:    stdout,
		Stderr:    s.Stderr,
	})
}

// RunBatch executes every non-blank line read from r. It returns early if a
// line quits the shell.
func (s *Shell) RunBatch(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() && !s.Quit {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.RunLine(line)
	}

	return scanner.Err()
}

// RunInteractive reads lines with a prompt until input ends or the shell
// quits. Finished background jobs are reported before each prompt.
func (s *Shell) RunInteractive() error {
	cfg := &readline.Config{
		HistoryFile:     s.Config.HistoryFile,
		InterruptPrompt: "^C",
		Stdin:           readline.NewCancelableStdin(s.Stdin),
		Stdout:          s.Stdout,
		Stderr:          s.Stderr,
	}
	if err := cfg.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	defer rl.Close()

	for !s.Quit {
		s.Jobs.Reap()
		rl.SetPrompt(s.prompt())

		line, err := rl.Readline()
		switch {
		case errors.Is(err, io.EOF):
			return nil // Input closed, quit.

		case errors.Is(err, readline.ErrInterrupt):
			continue

		case err != nil:
			s.Logger.Error("readline failed", "error", err)
			return err

		case strings.TrimSpace(line) == "":
			continue // empty line

		default:
			s.RunLine(line)
		}
	}

	return nil
}

func (s *Shell) prompt() string {
	user := os.Getenv(EnvUser)
	if user == "" {
		user = "unknown"
	}

	host, err := os.Hostname()
	if err != nil {
		host = user
	}

	cwd, err := os.Getwd()
	if err != nil {
		s.Logger.Warn("getwd failed", "error", err)
		cwd = "?"
	}

	return ColorBoldGreen.Sprintf("%s@%s:", user, host) +
		ColorBlue.Sprint(cwd) +
		ColorGreen.Sprint("$ ")
}
