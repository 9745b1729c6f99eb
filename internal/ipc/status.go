package ipc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// StatusSnapshot represents the complete daemon state at a point in time.
type StatusSnapshot struct {
	Phase         string    `json:"phase"`                // idle|requesting|listening|hearing|detected|failed
	Transcript    string    `json:"transcript,omitempty"` // current/captured transcript text
	Reason        string    `json:"reason,omitempty"`     // failure reason
	SessionID     string    `json:"session_id,omitempty"`
	Triggers      []string  `json:"triggers"`             // active trigger phrases
	WakeCount     int       `json:"wake_count"`           // detections since daemon start
	ForwardTarget string    `json:"forward_target"`       // empty when forwarding disabled
	ForwardSent   uint64    `json:"forward_sent"`         // commands handed to the runner
	ForwardFailed uint64    `json:"forward_failed"`       // runner failures
	ForwardDropped uint64   `json:"forward_dropped"`      // queue overflow drops
	EngineName    string    `json:"engine_name"`
	Timestamp     time.Time `json:"timestamp"`
}

// CacheDir returns the daemon's runtime state directory, ~/.cache/openclaw.
func CacheDir() string {
	return filepath.Join(os.Getenv("HOME"), ".cache", "openclaw")
}

// WriteStatus persists StatusSnapshot to ~/.cache/openclaw/status.json using
// an atomic write.
func WriteStatus(status *StatusSnapshot) error {
	if err := os.MkdirAll(CacheDir(), 0755); err != nil {
		return err
	}
	return atomicWriteJSON(filepath.Join(CacheDir(), "status.json"), status)
}

// ReadStatus loads StatusSnapshot from ~/.cache/openclaw/status.json.
func ReadStatus() (*StatusSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(CacheDir(), "status.json"))
	if err != nil {
		return nil, err
	}

	var status StatusSnapshot
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// atomicWriteJSON writes data to a file atomically using temp file + rename.
func atomicWriteJSON(path string, data interface{}) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "status-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Ensure cleanup on error
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return err
	}

	if err := tmpFile.Sync(); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}
	tmpFile = nil // Prevent defer cleanup

	return os.Rename(tmpPath, path)
}
