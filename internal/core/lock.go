package core

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning is returned when another instance holds the pid lock.
var ErrAlreadyRunning = errors.New("tuck is already running")

// ProcessLock is an exclusive flock on a pid file, held for the life of the
// process.
type ProcessLock struct {
	file *os.File
	path string
}

func AcquireProcessLock(pidFile string) (*ProcessLock, error) {
	if err := os.MkdirAll(filepath.Dir(pidFile), 0o755); err != nil {
		return nil, fmt.Errorf("create pid dir: %w", err)
	}

	file, err := os.OpenFile(pidFile, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pid file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			log.Printf("[LOCK] Another instance holds %s", pidFile)
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("lock pid file: %w", err)
	}

	lock := &ProcessLock{file: file, path: pidFile}

	if err := file.Truncate(0); err != nil {
		lock.Release()
		return nil, fmt.Errorf("truncate pid file: %w", err)
	}
	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		lock.Release()
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	if err := file.Sync(); err != nil {
		lock.Release()
		return nil, fmt.Errorf("sync pid file: %w", err)
	}

	log.Printf("[LOCK] Acquired %s (pid %d)", pidFile, os.Getpid())
	return lock, nil
}

func (l *ProcessLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	var releaseErr error

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		releaseErr = errors.Join(releaseErr, fmt.Errorf("unlock pid file: %w", err))
	}
	if err := l.file.Close(); err != nil {
		releaseErr = errors.Join(releaseErr, fmt.Errorf("close pid file: %w", err))
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		releaseErr = errors.Join(releaseErr, fmt.Errorf("remove pid file: %w", err))
	}

	l.file = nil
	log.Printf("[LOCK] Released %s", l.path)
	return releaseErr
}
