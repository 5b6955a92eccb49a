// Package daemon manages the pid file of the background capture process.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// DefaultPIDFile is used when no pid file is configured.
func DefaultPIDFile() string {
	return filepath.Join(os.TempDir(), "asrm.pid")
}

// AcquirePID creates a PID file at path with the current process PID.
// It fails if another live process already holds it; a file left behind by
// a dead process is replaced.
func AcquirePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create PID directory: %w", err)
	}

	if existing, err := ReadPID(path); err == nil {
		if existing != os.Getpid() && IsProcessAlive(existing) {
			return fmt.Errorf("daemon already running (PID %d)", existing)
		}
		os.Remove(path)
	}

	return writePID(path, os.Getpid())
}

// writePID writes pid to a temporary file and renames it into place.
func writePID(path string, pid int) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("write temp PID file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename PID file: %w", err)
	}
	return nil
}

// ReleasePID removes the PID file if it still names the current process.
func ReleasePID(path string) error {
	if pid, err := ReadPID(path); err == nil && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove PID file: %w", err)
	}
	return nil
}

// ReadPID reads and parses the PID from the given file.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse PID file: %w", err)
	}

	return pid, nil
}

// Running returns the PID in path when that process is alive.
func Running(path string) (int, bool) {
	pid, err := ReadPID(path)
	if err != nil || !IsProcessAlive(pid) {
		return 0, false
	}
	return pid, true
}

// IsProcessAlive checks whether a process with the given PID exists by
// sending signal 0.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Stop sends SIGTERM to the process named in path and waits up to timeout
// for it to exit. The pid file is removed once the process is gone.
func Stop(path string, timeout time.Duration) (int, error) {
	pid, err := ReadPID(path)
	if err != nil {
		return 0, fmt.Errorf("daemon is not running: %w", err)
	}

	if !IsProcessAlive(pid) {
		os.Remove(path)
		return pid, fmt.Errorf("daemon is not running (stale PID %d removed)", pid)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("finding process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		os.Remove(path)
		return pid, fmt.Errorf("sending SIGTERM to PID %d: %w (PID file cleaned up)", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for IsProcessAlive(pid) {
		if time.Now().After(deadline) {
			return pid, fmt.Errorf("PID %d did not exit within %s", pid, timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}

	os.Remove(path)
	return pid, nil
}
