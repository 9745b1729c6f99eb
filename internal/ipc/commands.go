package ipc

import (
	"os"
	"path/filepath"
	"strings"
)

// Command represents user commands from the control CLI to the daemon.
type Command string

const (
	CmdStart  Command = "start"  // start a new listen session
	CmdStop   Command = "stop"   // stop the active session
	CmdTest   Command = "test"   // run the forward connectivity self-test
	CmdReload Command = "reload" // re-read config for future sessions
	CmdQuit   Command = "quit"   // shutdown daemon
)

// WriteCommand writes a command to ~/.cache/openclaw/cmd.txt.
func WriteCommand(cmd Command) error {
	if err := os.MkdirAll(CacheDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(CommandPath(), []byte(string(cmd)), 0644)
}

// CommandPath returns the command file location.
func CommandPath() string {
	return filepath.Join(CacheDir(), "cmd.txt")
}

// ReadCommand reads and clears ~/.cache/openclaw/cmd.txt.
// Returns empty string if no command or file doesn't exist.
func ReadCommand() (Command, error) {
	data, err := os.ReadFile(CommandPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // No command pending
		}
		return "", err
	}

	// Clear the file immediately to prevent re-execution
	if err := os.WriteFile(CommandPath(), []byte(""), 0644); err != nil {
		return "", err
	}

	cmd := Command(strings.TrimSpace(string(data)))

	switch cmd {
	case CmdStart, CmdStop, CmdTest, CmdReload, CmdQuit:
		return cmd, nil
	case "":
		return "", nil // Empty file
	default:
		// Invalid command - ignore it
		return "", nil
	}
}
