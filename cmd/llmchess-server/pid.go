package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

type pidFile struct {
	path   string
	file   *os.File
	locked bool
}

// acquirePIDFile writes the current PID to path. With lock set, a flock is held
// for the process lifetime so a second instance fails fast.
func acquirePIDFile(path string, lock bool) (*pidFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		if lock {
			if err := holderRunning(path); err != nil {
				return nil, err
			}
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	pf := &pidFile{path: path, file: f}
	if lock {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			f.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, errors.New("another instance holds the lock")
			}
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		pf.locked = true
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		pf.release()
		return nil, fmt.Errorf("write pid: %w", err)
	}
	if err := f.Sync(); err != nil {
		pf.release()
		return nil, fmt.Errorf("sync pid: %w", err)
	}
	return pf, nil
}

func (p *pidFile) release() {
	if p.locked {
		_ = syscall.Flock(int(p.file.Fd()), syscall.LOCK_UN)
	}
	_ = p.file.Close()
	_ = os.Remove(p.path)
}

// holderRunning returns nil when the recorded process is gone and the file can be reused
func holderRunning(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read existing pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// unreadable content, treat as stale
		return nil
	}
	proc, _ := os.FindProcess(pid)
	err = proc.Signal(syscall.Signal(0))
	if err == nil || errors.Is(err, syscall.EPERM) {
		return fmt.Errorf("process %d from %s is still running", pid, path)
	}
	return nil
}
