package executor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/josephlewis42/opsh/core/jobs"
	"github.com/josephlewis42/opsh/core/shell"
	"github.com/josephlewis42/opsh/core/signals"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuiltins struct {
	calls []string
}

func (f *fakeBuiltins) RunBuiltin(cmd *shell.Command, stdout io.Writer) int {
	f.calls = append(f.calls, cmd.Line)
	fmt.Fprintf(stdout, "builtin %s\n", strings.Join(cmd.Argv, " "))
	return 0
}

type testEnv struct {
	exec     *Executor
	builtins *fakeBuiltins
	table    *jobs.Table
	stdout   *os.File
	stderr   bytes.Buffer
	notices  bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stdout, err := os.Create(filepath.Join(t.TempDir(), "stdout"))
	require.NoError(t, err)
	t.Cleanup(func() { stdout.Close() })

	env := &testEnv{builtins: &fakeBuiltins{}, stdout: stdout}
	env.table = jobs.NewTable(jobs.DefaultCapacity, jobs.WithOutput(&env.notices))
	env.exec = New(env.builtins, env.table, &signals.Foreground{}, nil)
	env.exec.Fs = afero.NewMemMapFs()
	env.exec.Stdin = nil
	env.exec.Stdout = stdout
	env.exec.Stderr = &env.stderr

	return env
}

func (env *testEnv) output(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(env.stdout.Name())
	require.NoError(t, err)
	return string(data)
}

// reapAll waits until every tracked job has been collected.
func (env *testEnv) reapAll(t *testing.T) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for env.table.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("jobs never finished: %v", env.table.Jobs())
		}
		env.table.Reap()
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExecuteEmpty(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse(""))
	env.exec.Execute(shell.Parse("   "))

	assert.Empty(t, env.output(t))
	assert.Empty(t, env.stderr.String())
	assert.Empty(t, env.builtins.calls)
}

func TestExecuteForeground(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("echo-never-a-builtin-name"))
	env.exec.Execute(shell.Parse("printf hello"))

	assert.Equal(t, "hello", env.output(t))
	assert.Equal(t, "echo-never-a-builtin-name: command not found\n", env.stderr.String())
	assert.Equal(t, 0, env.exec.Foreground.Get(), "register cleared after wait")
}

func TestExecuteForegroundIgnoresRedirection(t *testing.T) {
	env := newTestEnv(t)
	fs := env.exec.Fs

	env.exec.Execute(shell.Parse("printf hi > out.txt"))

	assert.Equal(t, "hi", env.output(t))
	exists, err := afero.Exists(fs, "out.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExecutePipeline(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse(`printf a\nb\nc\n | tr a-z A-Z | sort -r`))

	assert.Equal(t, "C\nB\nA\n", env.output(t))
	assert.Empty(t, env.stderr.String())
	assert.Equal(t, 0, env.exec.Foreground.Get())
}

func TestExecutePipelineLargeOutput(t *testing.T) {
	env := newTestEnv(t)

	// More than a pipe buffer passes through, which deadlocks if stages are
	// waited on before their readers start.
	env.exec.Execute(shell.Parse("seq 1 200000 | tail -n 1"))

	assert.Equal(t, "200000\n", env.output(t))
}

func TestExecutePipelineMissingStage(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("printf x | not-a-real-program | printf done"))

	assert.Equal(t, "done", env.output(t))
	assert.Equal(t, "not-a-real-program: command not found\n", env.stderr.String())
}

func TestExecutePipelineIgnoresBackground(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("printf abc | tr a-z A-Z &"))

	assert.Equal(t, "ABC", env.output(t))
	assert.Equal(t, 0, env.table.Len())
}

func TestExecuteBackground(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("true &"))

	jobList := env.table.Jobs()
	require.Len(t, jobList, 1)
	assert.Equal(t, "true", jobList[0].Command)
	assert.Equal(t, fmt.Sprintf("[Background] PID: %d\n", jobList[0].PID), env.output(t))

	env.reapAll(t)
	assert.Equal(t, "[1]+ Done true\n", env.notices.String())
}

func TestExecuteBackgroundTableFull(t *testing.T) {
	env := newTestEnv(t)
	env.table = jobs.NewTable(1, jobs.WithOutput(&env.notices))
	env.exec.Jobs = env.table

	env.exec.Execute(shell.Parse("sleep 0.2 &"))
	env.exec.Execute(shell.Parse("sleep 0.2 &"))

	assert.Equal(t, 1, env.table.Len())
	assert.Contains(t, env.output(t), "Job limit reached, unable to track new background job.\n")
	assert.Equal(t, 2, strings.Count(env.output(t), "[Background] PID:"))

	env.reapAll(t)
}

func TestExecuteBuiltin(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("set_interval 10"))

	assert.Equal(t, []string{"set_interval 10"}, env.builtins.calls)
	assert.Equal(t, "builtin set_interval 10\n", env.output(t))
}

func TestExecuteBuiltinRedirect(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("echo hello > out.txt"))
	env.exec.Execute(shell.Parse("echo after"))

	got, err := afero.ReadFile(env.exec.Fs, "out.txt")
	require.NoError(t, err)
	assert.Equal(t, "builtin echo hello\n", string(got))
	assert.Equal(t, "builtin echo after\n", env.output(t), "stdout restored after redirect")
}

func TestExecuteBuiltinRedirectFailure(t *testing.T) {
	env := newTestEnv(t)
	env.exec.Fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	env.exec.Execute(shell.Parse("echo hello > out.txt"))

	assert.Contains(t, env.stderr.String(), "Output file open failed")
	assert.Equal(t, "builtin echo hello\n", env.output(t))
}

func TestExecuteBuiltinBackground(t *testing.T) {
	env := newTestEnv(t)
	env.exec.Self = []string{"sh", "-c", `printf 'child ran: %s\n' "$0"`}

	env.exec.Execute(shell.Parse("set_metrics 1 2 &"))

	assert.Empty(t, env.builtins.calls, "not run in the shell process")
	jobList := env.table.Jobs()
	require.Len(t, jobList, 1)
	assert.Equal(t, "set_metrics 1 2", jobList[0].Command)

	env.reapAll(t)
	assert.Contains(t, env.output(t), "child ran: set_metrics 1 2\n")
}

func TestExecuteBuiltinBackgroundUnavailable(t *testing.T) {
	env := newTestEnv(t)

	env.exec.Execute(shell.Parse("start_monitor &"))

	assert.Contains(t, env.stderr.String(), "start_monitor: cannot run builtin in the background")
	assert.Equal(t, 0, env.table.Len())
}

func TestForegroundRegisteredDuringWait(t *testing.T) {
	env := newTestEnv(t)

	seen := make(chan int, 1)
	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if pid := env.exec.Foreground.Get(); pid != 0 {
				seen <- pid
				syscall.Kill(pid, syscall.SIGINT)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		seen <- 0
	}()

	start := time.Now()
	env.exec.Execute(shell.Parse("sleep 30"))

	assert.NotZero(t, <-seen)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, 0, env.exec.Foreground.Get())
}
