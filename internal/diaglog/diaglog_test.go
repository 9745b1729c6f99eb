package diaglog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_DisabledIsNoOp(t *testing.T) {
	t.Setenv("OPENCLAW_DEBUG", "")

	path := filepath.Join(t.TempDir(), "debug.ndjson")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.Log(LogEntry{Component: ComponentController, Event: EventSessionStart})

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logger should not create a file")
	}
}

func TestLogger_WritesNDJSON(t *testing.T) {
	t.Setenv("OPENCLAW_DEBUG", "true")

	path := filepath.Join(t.TempDir(), "debug.ndjson")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.Log(LogEntry{
		Component: ComponentController,
		Event:     EventWakeDetected,
		SessionID: "abc-123",
		Payload:   map[string]interface{}{"triggers": 1},
	})
	l.Log(LogEntry{
		Component: ComponentDispatcher,
		Event:     EventForwardFailed,
		Reason:    "connection refused",
	})
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Event != EventWakeDetected || entries[0].SessionID != "abc-123" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Timestamp == "" {
		t.Error("timestamp should be auto-filled")
	}
	if entries[1].Reason != "connection refused" {
		t.Errorf("second entry reason = %q", entries[1].Reason)
	}
}

func TestLogger_RedactsSensitivePayload(t *testing.T) {
	t.Setenv("OPENCLAW_DEBUG", "true")

	path := filepath.Join(t.TempDir(), "debug.ndjson")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.Log(LogEntry{
		Component: ComponentDispatcher,
		Event:     EventForwardDispatch,
		Payload: map[string]interface{}{
			"target":        "user@host",
			"identity_path": "/home/user/.ssh/id_ed25519",
			"transcript":    "hey clawdis open the door",
		},
	})
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if strings.Contains(content, "id_ed25519") {
		t.Error("identity path leaked into log")
	}
	if strings.Contains(content, "open the door") {
		t.Error("transcript leaked into log")
	}
	if !strings.Contains(content, "user@host") {
		t.Error("non-sensitive target should survive redaction")
	}
	if !strings.Contains(content, "[REDACTED]") {
		t.Error("expected [REDACTED] markers")
	}
}

func TestRedact_NestedAndSlices(t *testing.T) {
	in := map[string]interface{}{
		"outer": map[string]interface{}{
			"token": "s3cret",
			"ok":    "visible",
		},
		"list": []interface{}{
			map[string]interface{}{"password": "hunter2"},
		},
	}

	out := Redact(in).(map[string]interface{})

	outer := out["outer"].(map[string]interface{})
	if outer["token"] != "[REDACTED]" {
		t.Errorf("nested token = %v", outer["token"])
	}
	if outer["ok"] != "visible" {
		t.Errorf("non-sensitive value altered: %v", outer["ok"])
	}
	elem := out["list"].([]interface{})[0].(map[string]interface{})
	if elem["password"] != "[REDACTED]" {
		t.Errorf("slice element password = %v", elem["password"])
	}

	// Original must not be mutated.
	if in["outer"].(map[string]interface{})["token"] != "s3cret" {
		t.Error("Redact mutated its input")
	}
}

func TestExport(t *testing.T) {
	t.Setenv("OPENCLAW_DEBUG", "true")

	dir := t.TempDir()
	logPath := filepath.Join(dir, "debug.ndjson")
	l, err := New(logPath)
	if err != nil {
		t.Fatal(err)
	}
	l.Log(LogEntry{Component: ComponentCore, Event: EventSessionStart})
	l.Log(LogEntry{Component: ComponentCore, Event: EventSessionStop})
	l.Close()

	outPath, lines, err := Export(logPath, dir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if lines != 2 {
		t.Errorf("exported %d lines, want 2", lines)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	var bundle DiagBundle
	if err := json.Unmarshal([]byte(first), &bundle); err != nil {
		t.Fatalf("header is not a DiagBundle: %v", err)
	}
	if bundle.EntryCount != 2 {
		t.Errorf("bundle entry count = %d, want 2", bundle.EntryCount)
	}
}

func TestExport_MissingLog(t *testing.T) {
	_, _, err := Export(filepath.Join(t.TempDir(), "nope.ndjson"), t.TempDir())
	if !os.IsNotExist(err) && !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}
