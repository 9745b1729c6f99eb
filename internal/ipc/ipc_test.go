package ipc

import (
	"os"
	"testing"
	"time"
)

func TestWriteReadStatus(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := &StatusSnapshot{
		Phase:         "hearing",
		Transcript:    "hey claw",
		SessionID:     "s-1",
		Triggers:      []string{"hey clawdis"},
		WakeCount:     3,
		ForwardTarget: "user@host",
		ForwardSent:   2,
		EngineName:    "ws",
		Timestamp:     time.Now(),
	}
	if err := WriteStatus(in); err != nil {
		t.Fatalf("WriteStatus failed: %v", err)
	}

	out, err := ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if out.Phase != "hearing" || out.Transcript != "hey claw" {
		t.Errorf("got %+v", out)
	}
	if out.WakeCount != 3 || out.ForwardSent != 2 {
		t.Errorf("counters lost: %+v", out)
	}
}

func TestReadStatus_Missing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := ReadStatus(); err == nil {
		t.Error("expected error when status.json is absent")
	}
}

func TestWriteReadCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := WriteCommand(CmdStart); err != nil {
		t.Fatalf("WriteCommand failed: %v", err)
	}

	cmd, err := ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand failed: %v", err)
	}
	if cmd != CmdStart {
		t.Errorf("cmd = %q, want start", cmd)
	}

	// Command file is cleared after reading.
	cmd, err = ReadCommand()
	if err != nil {
		t.Fatalf("second ReadCommand failed: %v", err)
	}
	if cmd != "" {
		t.Errorf("expected cleared command, got %q", cmd)
	}
}

func TestReadCommand_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := os.MkdirAll(CacheDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(CommandPath(), []byte("explode"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd, err := ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand failed: %v", err)
	}
	if cmd != "" {
		t.Errorf("invalid command should be ignored, got %q", cmd)
	}
}

func TestReadCommand_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd, err := ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand failed: %v", err)
	}
	if cmd != "" {
		t.Errorf("expected no command, got %q", cmd)
	}
}
