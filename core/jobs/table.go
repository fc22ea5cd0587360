// Package jobs tracks background processes started by the shell.
//
// A Table holds a bounded, ordered list of Jobs. Finished jobs are collected
// by polling for exited children with Reap, which must only be called when
// nothing else is waiting on a specific child.
package jobs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultCapacity is the number of jobs a Table tracks unless configured
// otherwise.
const DefaultCapacity = 100

var (
	ErrTableFull   = errors.New("job limit reached, unable to track new background job")
	ErrJobNotFound = errors.New("job not found")
)

// Job is a background process tracked by the shell.
type Job struct {
	ID      int
	PID     int
	Command string
}

// Waiter returns the pid of an exited child without blocking. It returns
// false when no more exited children are available.
type Waiter func() (pid int, ok bool)

// KillFunc sends sig to the process pid.
type KillFunc func(pid int, sig syscall.Signal) error

// Table is a fixed capacity list of Jobs kept in insertion order.
type Table struct {
	capacity int
	jobs     []Job
	nextID   int

	wait Waiter
	kill KillFunc
	out  io.Writer

	mu sync.Mutex
}

// Option configures a Table.
type Option func(*Table)

// WithWaiter overrides how exited children are collected.
func WithWaiter(w Waiter) Option {
	return func(t *Table) {
		t.wait = w
	}
}

// WithKill overrides how signals are delivered to jobs.
func WithKill(k KillFunc) Option {
	return func(t *Table) {
		t.kill = k
	}
}

// WithOutput sets where completion notices are written.
func WithOutput(w io.Writer) Option {
	return func(t *Table) {
		t.out = w
	}
}

// NewTable creates a Table that holds at most capacity jobs.
func NewTable(capacity int, opts ...Option) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	t := &Table{
		capacity: capacity,
		nextID:   1,
		wait:     waitAny,
		kill:     unix.Kill,
		out:      os.Stdout,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Add tracks a new job. It returns ErrTableFull if the table is at capacity,
// in which case the process keeps running but is not tracked.
func (t *Table) Add(pid int, command string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.jobs) >= t.capacity {
		return Job{}, ErrTableFull
	}

	job := Job{ID: t.nextID, PID: pid, Command: command}
	t.nextID++
	t.jobs = append(t.jobs, job)

	return job, nil
}

// Jobs returns a copy of the tracked jobs.
func (t *Table) Jobs() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Job, len(t.jobs))
	copy(out, t.jobs)
	return out
}

// Len returns the number of tracked jobs.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.jobs)
}

// Remove stops tracking the job with the given pid. Later jobs shift down to
// fill the gap.
func (t *Table) Remove(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.removeLocked(pid)
	return ok
}

func (t *Table) removeLocked(pid int) (Job, bool) {
	for i, job := range t.jobs {
		if job.PID == pid {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return job, true
		}
	}
	return Job{}, false
}

// FindByName returns the first job whose command name is name.
func (t *Table) FindByName(name string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, job := range t.jobs {
		fields := strings.Fields(job.Command)
		if len(fields) > 0 && fields[0] == name {
			return job, true
		}
	}
	return Job{}, false
}

// Signal sends sig to a tracked job.
func (t *Table) Signal(pid int, sig syscall.Signal) error {
	t.mu.Lock()
	found := false
	for _, job := range t.jobs {
		if job.PID == pid {
			found = true
			break
		}
	}
	t.mu.Unlock()

	if !found {
		return ErrJobNotFound
	}

	return t.kill(pid, sig)
}

// Reap collects every exited child without blocking. Each one that belongs
// to a tracked job gets a completion notice and is removed.
func (t *Table) Reap() []Job {
	var done []Job

	for {
		pid, ok := t.wait()
		if !ok {
			break
		}

		t.mu.Lock()
		job, found := t.removeLocked(pid)
		t.mu.Unlock()

		if !found {
			continue
		}

		fmt.Fprintf(t.out, "[%d]+ Done %s\n", job.ID, job.Command)
		done = append(done, job)
	}

	return done
}

// TerminateAll sends SIGTERM to every tracked job. It does not wait for them
// to exit.
func (t *Table) TerminateAll() error {
	var errs []error

	for _, job := range t.Jobs() {
		if err := t.kill(job.PID, syscall.SIGTERM); err != nil {
			errs = append(errs, fmt.Errorf("terminate job %d (pid %d): %w", job.ID, job.PID, err))
		}
	}

	return errors.Join(errs...)
}

func waitAny() (int, bool) {
	var status unix.WaitStatus
	pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
