// Package pidfile guards against duplicate daemon instances.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile is an acquired single-instance lock backed by a pid file.
type PIDFile struct {
	path string
	pid  int
}

// Path returns the standard pid file location for the named binary,
// ~/.cache/openclaw/<app>.pid.
func Path(app string) string {
	return filepath.Join(os.Getenv("HOME"), ".cache", "openclaw", app+".pid")
}

// Acquire claims the pid file at path. It fails when another live process
// holds it; a stale file left by a dead process is replaced.
func Acquire(path string) (*PIDFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create pid directory: %w", err)
	}

	if data, err := os.ReadFile(path); err == nil {
		if prev, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			if alive(prev) {
				return nil, fmt.Errorf("another instance is already running (PID %d)", prev)
			}
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("failed to remove stale pid file: %w", err)
			}
		}
	}

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}

	return &PIDFile{path: path, pid: pid}, nil
}

// Release removes the pid file if it still belongs to this process.
func (p *PIDFile) Release() error {
	if p == nil {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil
	}
	if cur, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && cur == p.pid {
		return os.Remove(p.path)
	}
	return nil
}

// alive reports whether a process with the given pid exists. Signal 0 probes
// existence without delivering anything; EPERM still means the process exists.
func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
