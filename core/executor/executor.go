// Package executor runs parsed commands as builtins, single processes or
// pipelines of processes.
package executor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/josephlewis42/opsh/core/jobs"
	"github.com/josephlewis42/opsh/core/shell"
	"github.com/josephlewis42/opsh/core/signals"
	"github.com/spf13/afero"
)

// Builtins runs commands implemented inside the shell.
type Builtins interface {
	// RunBuiltin runs cmd writing its normal output to stdout and returns
	// its exit status.
	RunBuiltin(cmd *shell.Command, stdout io.Writer) int
}

// Executor dispatches commands. It is not safe for concurrent use, commands
// are run one at a time from the shell's control loop.
type Executor struct {
	Builtins   Builtins
	Jobs       *jobs.Table
	Foreground *signals.Foreground
	Logger     *log.Logger

	// Fs is used to create builtin output redirection targets.
	Fs afero.Fs

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Self is the argv prefix that runs a builtin line in a new process. The
	// line is appended as the final argument. Background builtins are
	// unavailable when it is empty.
	Self []string
}

// New creates an executor attached to the process's standard streams.
func New(builtins Builtins, table *jobs.Table, fg *signals.Foreground, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Executor{
		Builtins:   builtins,
		Jobs:       table,
		Foreground: fg,
		Logger:     logger,
		Fs:         afero.NewOsFs(),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Execute runs cmd. Failures are reported on the executor's streams, the
// shell keeps going regardless.
func (e *Executor) Execute(cmd *shell.Command) {
	switch {
	case cmd.Empty():
		return
	case cmd.Internal && cmd.Background:
		e.runBuiltinBackground(cmd)
	case cmd.Internal:
		e.runBuiltin(cmd)
	case cmd.Piped():
		e.runPipeline(cmd)
	case cmd.Background:
		e.runBackground(cmd)
	default:
		e.runForeground(cmd)
	}
}

func (e *Executor) runBuiltin(cmd *shell.Command) {
	out := e.Stdout

	if cmd.OutputPath != "" {
		f, err := e.Fs.OpenFile(cmd.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(e.Stderr, "Output file open failed: %v\n", err)
		} else {
			defer f.Close()
			out = f
		}
	}

	code := e.Builtins.RunBuiltin(cmd, out)
	e.Logger.Debug("builtin finished", "name", cmd.Name(), "code", code)
}

func (e *Executor) runBuiltinBackground(cmd *shell.Command) {
	if len(e.Self) == 0 {
		fmt.Fprintf(e.Stderr, "%s: cannot run builtin in the background\n", cmd.Name())
		return
	}

	args := append(append([]string{}, e.Self[1:]...), cmd.Line)
	proc := exec.Command(e.Self[0], args...)
	proc.Stdout = e.Stdout
	proc.Stderr = e.Stderr

	if err := proc.Start(); err != nil {
		fmt.Fprintf(e.Stderr, "Fork failed: %v\n", err)
		return
	}

	e.track(proc, cmd.Line)
}

func (e *Executor) runBackground(cmd *shell.Command) {
	proc := e.command(cmd.Argv)
	if err := proc.Start(); err != nil {
		e.reportStartError(cmd.Name(), err)
		return
	}

	e.track(proc, cmd.Line)
}

// track records a started background process as a job and lets go of it, the
// job table collects its exit status.
func (e *Executor) track(proc *exec.Cmd, line string) {
	pid := proc.Process.Pid

	if _, err := e.Jobs.Add(pid, line); errors.Is(err, jobs.ErrTableFull) {
		fmt.Fprintln(e.Stdout, "Job limit reached, unable to track new background job.")
	}
	fmt.Fprintf(e.Stdout, "[Background] PID: %d\n", pid)
	e.Logger.Debug("background process started", "pid", pid, "command", line)

	if err := proc.Process.Release(); err != nil {
		e.Logger.Warn("release failed", "pid", pid, "error", err)
	}
}

func (e *Executor) runForeground(cmd *shell.Command) {
	proc := e.command(cmd.Argv)
	if err := proc.Start(); err != nil {
		e.reportStartError(cmd.Name(), err)
		return
	}

	e.wait(proc)
}

// runPipeline starts every stage before waiting on any of them, so a stage
// blocked on a full pipe always has a running reader.
func (e *Executor) runPipeline(cmd *shell.Command) {
	n := len(cmd.Stages)

	readers := make([]*os.File, n-1)
	writers := make([]*os.File, n-1)
	for i := range readers {
		r, w, err := os.Pipe()
		if err != nil {
			fmt.Fprintf(e.Stderr, "pipe failed: %v\n", err)
			closeFiles(readers[:i])
			closeFiles(writers[:i])
			return
		}
		readers[i], writers[i] = r, w
	}

	var started []*exec.Cmd
	for i, stage := range cmd.Stages {
		if proc := e.startStage(i, stage, readers, writers); proc != nil {
			started = append(started, proc)
		}

		// The parent's copies are no longer needed once the stage using them
		// has been given its own.
		if i < n-1 {
			writers[i].Close()
		}
		if i > 0 {
			readers[i-1].Close()
		}
	}

	for _, proc := range started {
		e.wait(proc)
	}
}

func (e *Executor) startStage(i int, stage string, readers, writers []*os.File) *exec.Cmd {
	argv := shell.SplitArgs(stage)
	if len(argv) == 0 {
		fmt.Fprintf(e.Stderr, "pipeline stage %d is empty\n", i+1)
		return nil
	}

	proc := e.command(argv)
	if i > 0 {
		proc.Stdin = readers[i-1]
	}
	if i < len(writers) {
		proc.Stdout = writers[i]
	}

	if err := proc.Start(); err != nil {
		e.reportStartError(argv[0], err)
		return nil
	}
	e.Logger.Debug("pipeline stage started", "stage", i+1, "pid", proc.Process.Pid)

	return proc
}

// wait blocks until proc exits, routing terminal signals to it meanwhile.
func (e *Executor) wait(proc *exec.Cmd) {
	pid := proc.Process.Pid

	e.Foreground.Set(pid)
	err := proc.Wait()
	e.Foreground.Clear()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		e.Logger.Debug("process exited", "pid", pid, "code", 0)
	case errors.As(err, &exitErr):
		e.Logger.Debug("process exited", "pid", pid, "status", exitErr.ProcessState.String())
	default:
		fmt.Fprintf(e.Stderr, "wait failed: %v\n", err)
	}
}

func (e *Executor) command(argv []string) *exec.Cmd {
	proc := exec.Command(argv[0], argv[1:]...)
	proc.Stdin = e.Stdin
	proc.Stdout = e.Stdout
	proc.Stderr = e.Stderr
	return proc
}

func (e *Executor) reportStartError(name string, err error) {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(e.Stderr, "%s: command not found\n", name)
		return
	}
	fmt.Fprintf(e.Stderr, "%s: %v\n", name, err)
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}
