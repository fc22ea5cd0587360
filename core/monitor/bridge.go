// Package monitor starts the external metrics monitor and talks to it over a
// named pipe.
//
// Every handshake follows the same shape: the named pipe is created, a helper
// process opens it for writing and blocks until the monitor opens it for
// reading, then the helper writes its payload and exits. At startup the
// payload is a single sentinel byte, when the monitor is started for real it
// is the comma separated list of selected metrics.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

const (
	// Sentinel is written to the pipe during the startup handshake.
	Sentinel = "1"

	// MetricSeparator joins the selected metrics.
	MetricSeparator = ", "

	// FIFOWriteCommand is the hidden subcommand that writes to the pipe.
	FIFOWriteCommand = "__fifo-write"
)

// HelperCommand builds the process that writes payload into the pipe at
// fifoPath.
type HelperCommand func(fifoPath, payload string) *exec.Cmd

// SelfHelper returns a HelperCommand that re-executes the program at exe
// with the hidden pipe writing subcommand.
func SelfHelper(exe string) HelperCommand {
	return func(fifoPath, payload string) *exec.Cmd {
		return exec.Command(exe, FIFOWriteCommand, fifoPath, payload)
	}
}

// Bridge bootstraps and starts the monitor program.
type Bridge struct {
	FIFOPath    string
	MonitorPath string
	Helper      HelperCommand
	Logger      *log.Logger

	Stdout io.Writer
	Stderr io.Writer

	// replace swaps the running program for another, it defaults to unix.Exec.
	replace func(argv0 string, argv []string, envv []string) error
}

// NewBridge creates a bridge for the monitor at monitorPath.
func NewBridge(fifoPath, monitorPath string, helper HelperCommand, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bridge{
		FIFOPath:    fifoPath,
		MonitorPath: monitorPath,
		Helper:      helper,
		Logger:      logger,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		replace:     unix.Exec,
	}
}

// Bootstrap runs the monitor once so it publishes its metrics file. It
// blocks until the monitor exits, then releases and reaps the pipe writer.
func (b *Bridge) Bootstrap() error {
	if err := RemoveFIFO(b.FIFOPath); err != nil {
		return err
	}
	if err := CreateFIFO(b.FIFOPath); err != nil {
		return err
	}

	helper, err := b.startHelper(Sentinel)
	if err != nil {
		return err
	}

	monitor := exec.Command(b.MonitorPath)
	monitor.Stdout = b.Stdout
	monitor.Stderr = b.Stderr
	if err := monitor.Start(); err != nil {
		b.abandon(helper)
		return fmt.Errorf("start monitor %q: %w", b.MonitorPath, err)
	}
	b.Logger.Debug("monitor started", "pid", monitor.Process.Pid)

	var errs []error
	if err := monitor.Wait(); err != nil {
		errs = append(errs, fmt.Errorf("monitor: %w", err))
	}

	// A monitor that exited without reading leaves the writer blocked in open.
	drain, err := openDrain(b.FIFOPath)
	if err != nil {
		b.Logger.Debug("abandoning fifo writer", "error", err)
		b.abandon(helper)
		return errors.Join(append(errs, err)...)
	}
	defer drain.Close()

	if err := helper.Wait(); err != nil {
		errs = append(errs, fmt.Errorf("fifo writer: %w", err))
	}

	return errors.Join(errs...)
}

// Start hands the selected metrics to the monitor and replaces the current
// program with it. It only returns on failure.
func (b *Bridge) Start(metrics []string) error {
	if err := CreateFIFO(b.FIFOPath); err != nil {
		return err
	}

	helper, err := b.startHelper(strings.Join(metrics, MetricSeparator))
	if err != nil {
		return err
	}

	path, err := exec.LookPath(b.MonitorPath)
	if err == nil {
		b.Logger.Debug("replacing process with monitor", "path", path)
		err = b.replace(path, []string{b.MonitorPath}, os.Environ())
	}

	b.abandon(helper)
	if err == nil {
		return nil
	}
	return fmt.Errorf("exec monitor %q: %w", b.MonitorPath, err)
}

func (b *Bridge) startHelper(payload string) (*exec.Cmd, error) {
	if b.Helper == nil {
		return nil, errors.New("no fifo writer configured")
	}

	helper := b.Helper(b.FIFOPath, payload)
	helper.Stderr = b.Stderr
	if err := helper.Start(); err != nil {
		return nil, fmt.Errorf("start fifo writer: %w", err)
	}
	b.Logger.Debug("fifo writer started", "pid", helper.Process.Pid, "fifo", b.FIFOPath)

	return helper, nil
}

// abandon kills a helper that will never see a reader and reaps it.
func (b *Bridge) abandon(helper *exec.Cmd) {
	_ = helper.Process.Kill()
	_ = helper.Wait()
}
