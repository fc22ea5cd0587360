package commands

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/josephlewis42/opsh/core/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the line editor's goroutines and the shell.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newInteractiveShell returns a shell reading from a pipe and the pipe's
// write end.
func newInteractiveShell(t *testing.T) (*Shell, *os.File, *lockedBuffer) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		w.Close()
		r.Close()
	})

	out := &lockedBuffer{}
	cfg := config.Default().WithFs(afero.NewMemMapFs())
	s := NewShell(cfg, Streams{Stdin: r, Stdout: out, Stderr: out}, nil)

	return s, w, out
}

func runInteractive(t *testing.T, s *Shell) <-chan error {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- s.RunInteractive() }()
	return done
}

func waitInteractive(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("interactive loop did not return")
	}
}

func TestRunInteractiveReapsBeforePrompt(t *testing.T) {
	s, w, out := newInteractiveShell(t)
	done := runInteractive(t, s)

	_, err := w.WriteString("sleep 0.1 &\n")
	require.NoError(t, err)

	// The job finishes while the shell waits on the next line.
	time.Sleep(500 * time.Millisecond)
	_, err = w.WriteString("\n   \nquit\n")
	require.NoError(t, err)

	waitInteractive(t, done)

	got := out.String()
	assert.True(t, s.Quit)
	assert.Contains(t, got, "[Background] PID: ")

	doneAt := strings.Index(got, "[1]+ Done sleep 0.1")
	byeAt := strings.Index(got, "Goodbye!")
	require.NotEqual(t, -1, doneAt, "no completion notice in %q", got)
	require.NotEqual(t, -1, byeAt, "no shutdown banner in %q", got)
	assert.Less(t, doneAt, byeAt)
	assert.Equal(t, 0, s.Jobs.Len())
}

func TestRunInteractiveEndOfInput(t *testing.T) {
	s, w, out := newInteractiveShell(t)
	done := runInteractive(t, s)

	_, err := w.WriteString("echo -e A\\0102\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	waitInteractive(t, done)

	assert.False(t, s.Quit)
	assert.Contains(t, out.String(), "AB\n")
	assert.NotContains(t, out.String(), "Goodbye!")
}
