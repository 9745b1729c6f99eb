package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.pid")

	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("pid file missing: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		t.Errorf("pid file contains %q, want our pid %d", data, os.Getpid())
	}

	if err := pf.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pid file should be removed after Release")
	}
}

func TestAcquire_LivePIDRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.pid")

	// Our own pid is definitely alive.
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Acquire(path); err == nil {
		t.Error("expected Acquire to fail while the pid is alive")
	}
}

func TestAcquire_StalePIDReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.pid")

	// Very unlikely to be a live pid.
	if err := os.WriteFile(path, []byte("999999"), 0644); err != nil {
		t.Fatal(err)
	}

	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire should replace a stale pid file: %v", err)
	}
	defer pf.Release()
}

func TestRelease_DoesNotRemoveForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.pid")

	pf, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}

	// Another process took over the file.
	if err := os.WriteFile(path, []byte("424242"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := pf.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Release must not remove a pid file it no longer owns")
	}
}
