package monitor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// FIFOMode is the permission the named pipe is created with.
const FIFOMode = 0666

// CreateFIFO creates the named pipe at path. An existing file at path is
// left alone.
func CreateFIFO(path string) error {
	if err := unix.Mkfifo(path, FIFOMode); err != nil && !errors.Is(err, unix.EEXIST) {
		return fmt.Errorf("mkfifo %q: %w", path, err)
	}
	return nil
}

// RemoveFIFO unlinks the named pipe at path if it exists.
func RemoveFIFO(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", path, err)
	}
	return nil
}

// WriteFIFO opens the named pipe for writing, which blocks until a reader
// opens the other end, then writes payload and closes it.
func WriteFIFO(path, payload string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open fifo for writing: %w", err)
	}

	if _, err := f.WriteString(payload); err != nil {
		f.Close()
		return fmt.Errorf("write to fifo: %w", err)
	}

	return f.Close()
}

// openDrain opens the named pipe for reading without waiting for a writer,
// which releases a writer blocked in open. What it writes is discarded.
func openDrain(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open fifo for draining: %w", err)
	}
	return f, nil
}
