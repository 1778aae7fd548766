package state

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrLockHeld is returned when TryLockFile cannot acquire a lock
// because it is already held by another process.
var ErrLockHeld = errors.New("lock is held by another process")

// FileLock is an advisory flock(2) lock on a file.
type FileLock struct {
	file *os.File
	path string
}

// LockFile acquires an exclusive lock on path, blocking until it is free.
// The file is created if it does not exist. The caller must call Unlock.
func LockFile(path string) (*FileLock, error) {
	return lock(path, syscall.LOCK_EX)
}

// TryLockFile is like LockFile but returns ErrLockHeld instead of waiting.
func TryLockFile(path string) (*FileLock, error) {
	return lock(path, syscall.LOCK_EX|syscall.LOCK_NB)
}

func lock(path string, how int) (*FileLock, error) {
	//nolint:gosec // G304: lock paths are derived from the config directory
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for locking: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return &FileLock{file: f, path: path}, nil
}

// WithFileLock runs fn while holding an exclusive lock on path+".lock".
func WithFileLock(path string, fn func() error) error {
	fl, err := LockFile(path + ".lock")
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()
	return fn()
}

// Unlock releases the lock and closes the file. It is safe to call twice.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	if err := syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = fl.file.Close()
		fl.file = nil
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if err := fl.file.Close(); err != nil {
		fl.file = nil
		return fmt.Errorf("failed to close file: %w", err)
	}

	fl.file = nil
	return nil
}

// File returns the underlying file.
func (fl *FileLock) File() *os.File {
	return fl.file
}

// Path returns the path to the locked file.
func (fl *FileLock) Path() string {
	return fl.path
}

// InstanceLock keeps a second interactive console from running against the
// same configuration directory. The holder's PID is written into the file.
type InstanceLock struct {
	*FileLock
}

// AcquireInstanceLock takes the instance lock at path without blocking.
func AcquireInstanceLock(path string) (*InstanceLock, error) {
	fl, err := TryLockFile(path)
	if errors.Is(err, ErrLockHeld) {
		if pid := readPID(path); pid > 0 {
			return nil, fmt.Errorf("another mccmd console is already running (PID: %d): %w", pid, err)
		}
		return nil, fmt.Errorf("another mccmd console is already running: %w", err)
	}
	if err != nil {
		return nil, err
	}

	if err := writePID(fl.File()); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	return &InstanceLock{FileLock: fl}, nil
}

// Release unlocks and removes the lock file.
func (il *InstanceLock) Release() error {
	if err := il.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(il.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func writePID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return err
	}
	return f.Sync()
}

func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
