// Package signals forwards terminal signals to the foreground child.
package signals

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// Forwarded lists the signals the router intercepts.
var Forwarded = []os.Signal{syscall.SIGINT, syscall.SIGTSTP, syscall.SIGQUIT}

// Foreground holds the pid of the child the shell is currently waiting on.
// Zero means the shell itself owns the terminal.
type Foreground struct {
	pid atomic.Int64
}

// Set records pid as the foreground process.
func (f *Foreground) Set(pid int) {
	f.pid.Store(int64(pid))
}

// Clear marks the shell as idle.
func (f *Foreground) Clear() {
	f.pid.Store(0)
}

// Get returns the foreground pid, or 0 when idle.
func (f *Foreground) Get() int {
	return int(f.pid.Load())
}

// Router relays intercepted signals to the registered foreground process.
// While idle, signals are swallowed so the shell survives them.
type Router struct {
	Foreground *Foreground
	Logger     *log.Logger

	// Kill delivers a signal, it defaults to unix.Kill.
	Kill func(pid int, sig syscall.Signal) error

	sigs chan os.Signal
	done chan struct{}
	wg   sync.WaitGroup
}

// NewRouter creates a router reading from fg.
func NewRouter(fg *Foreground, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Router{
		Foreground: fg,
		Logger:     logger,
		Kill:       unix.Kill,
	}
}

// Start subscribes to the forwarded signals and begins routing them.
func (r *Router) Start() {
	r.sigs = make(chan os.Signal, 8)
	r.done = make(chan struct{})
	signal.Notify(r.sigs, Forwarded...)

	r.wg.Add(1)
	go r.loop()
}

// Stop unsubscribes and waits for the routing goroutine to exit.
func (r *Router) Stop() {
	if r.sigs == nil {
		return
	}
	signal.Stop(r.sigs)
	close(r.done)
	r.wg.Wait()
	r.sigs = nil
}

func (r *Router) loop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			return
		case sig := <-r.sigs:
			r.route(sig)
		}
	}
}

func (r *Router) route(sig os.Signal) {
	sysSig, ok := sig.(syscall.Signal)
	if !ok {
		return
	}

	pid := r.Foreground.Get()
	if pid == 0 {
		r.Logger.Debug("signal ignored, no foreground process", "signal", sysSig)
		return
	}

	if err := r.Kill(pid, sysSig); err != nil {
		r.Logger.Debug("forwarding signal failed", "signal", sysSig, "pid", pid, "error", err)
		return
	}
	r.Logger.Debug("forwarded signal", "signal", sysSig, "pid", pid)
}
