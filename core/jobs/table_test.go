package jobs

import (
	"bytes"
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWaiter returns the queued pids one at a time.
func fakeWaiter(pids ...int) Waiter {
	return func() (int, bool) {
		if len(pids) == 0 {
			return 0, false
		}
		pid := pids[0]
		pids = pids[1:]
		return pid, true
	}
}

type killCall struct {
	pid int
	sig syscall.Signal
}

func recordKills(calls *[]killCall, err error) KillFunc {
	return func(pid int, sig syscall.Signal) error {
		*calls = append(*calls, killCall{pid, sig})
		return err
	}
}

func TestTableAdd(t *testing.T) {
	table := NewTable(2)

	first, err := table.Add(100, "sleep 10")
	require.NoError(t, err)
	second, err := table.Add(200, "sleep 20")
	require.NoError(t, err)

	assert.Equal(t, Job{ID: 1, PID: 100, Command: "sleep 10"}, first)
	assert.Equal(t, Job{ID: 2, PID: 200, Command: "sleep 20"}, second)

	_, err = table.Add(300, "sleep 30")
	assert.ErrorIs(t, err, ErrTableFull)
	assert.Equal(t, 2, table.Len())
}

func TestTableDefaultCapacity(t *testing.T) {
	table := NewTable(0)

	for i := 0; i < DefaultCapacity; i++ {
		_, err := table.Add(i+1, "job")
		require.NoError(t, err)
	}

	_, err := table.Add(DefaultCapacity+1, "job")
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestTableRemoveKeepsOrder(t *testing.T) {
	table := NewTable(10)
	table.Add(1, "a")
	table.Add(2, "b")
	table.Add(3, "c")

	assert.True(t, table.Remove(2))
	assert.False(t, table.Remove(2))

	jobs := table.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Command)
	assert.Equal(t, "c", jobs[1].Command)
}

func TestTableIDsNotReused(t *testing.T) {
	table := NewTable(10)
	table.Add(1, "a")
	table.Add(2, "b")
	table.Remove(2)

	job, err := table.Add(3, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, job.ID)
}

func TestTableFindByName(t *testing.T) {
	table := NewTable(10)
	table.Add(1, "sleep 100")
	table.Add(2, "start_monitor")
	table.Add(3, "start_monitor")

	job, ok := table.FindByName("start_monitor")
	require.True(t, ok)
	assert.Equal(t, 2, job.PID)

	_, ok = table.FindByName("start")
	assert.False(t, ok)
}

func TestTableReap(t *testing.T) {
	var out bytes.Buffer
	table := NewTable(10, WithWaiter(fakeWaiter(20, 99, 10)), WithOutput(&out))
	table.Add(10, "sleep 1")
	table.Add(20, "ls -l")
	table.Add(30, "sleep 5")

	done := table.Reap()

	require.Len(t, done, 2)
	assert.Equal(t, "[2]+ Done ls -l\n[1]+ Done sleep 1\n", out.String())
	assert.Equal(t, []Job{{ID: 3, PID: 30, Command: "sleep 5"}}, table.Jobs())
}

func TestTableReapNothing(t *testing.T) {
	var out bytes.Buffer
	table := NewTable(10, WithWaiter(fakeWaiter()), WithOutput(&out))
	table.Add(10, "sleep 1")

	assert.Empty(t, table.Reap())
	assert.Empty(t, out.String())
	assert.Equal(t, 1, table.Len())
}

func TestTableSignal(t *testing.T) {
	var calls []killCall
	table := NewTable(10, WithKill(recordKills(&calls, nil)))
	table.Add(10, "start_monitor")

	assert.NoError(t, table.Signal(10, syscall.SIGINT))
	assert.ErrorIs(t, table.Signal(11, syscall.SIGINT), ErrJobNotFound)
	assert.Equal(t, []killCall{{10, syscall.SIGINT}}, calls)
}

func TestTableTerminateAll(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		var calls []killCall
		table := NewTable(10, WithKill(recordKills(&calls, nil)))
		table.Add(10, "a")
		table.Add(20, "b")

		assert.NoError(t, table.TerminateAll())
		assert.Equal(t, []killCall{{10, syscall.SIGTERM}, {20, syscall.SIGTERM}}, calls)
	})

	t.Run("errors joined", func(t *testing.T) {
		var calls []killCall
		table := NewTable(10, WithKill(recordKills(&calls, syscall.ESRCH)))
		table.Add(10, "a")
		table.Add(20, "b")

		err := table.TerminateAll()
		require.Error(t, err)
		assert.True(t, errors.Is(err, syscall.ESRCH))
		assert.Contains(t, err.Error(), "pid 10")
		assert.Contains(t, err.Error(), "pid 20")
		assert.Len(t, calls, 2)
	})
}

func TestTableReapRealProcess(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	require.NoError(t, cmd.Process.Release())

	var out bytes.Buffer
	table := NewTable(10, WithOutput(&out))
	table.Add(pid, "true")

	deadline := time.Now().Add(5 * time.Second)
	for table.Len() > 0 && time.Now().Before(deadline) {
		table.Reap()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "[1]+ Done true\n", out.String())
}

func TestTableTerminateAllRealProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())

	table := NewTable(10)
	table.Add(cmd.Process.Pid, "sleep 30")

	require.NoError(t, table.TerminateAll())

	err := cmd.Wait()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	status := exitErr.Sys().(syscall.WaitStatus)
	assert.Equal(t, syscall.SIGTERM, status.Signal())
}
