package forward

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a command on a remote target. The transcript (or probe
// payload) is supplied on stdin.
type Runner interface {
	Run(target, identityPath, command string, stdin io.Reader) error
}

// SSHRunner executes remote commands through the system ssh binary in batch
// mode, so a missing key or unknown host fails fast instead of prompting.
type SSHRunner struct {
	Timeout time.Duration // total wall-clock limit per invocation; default 30s
}

// NewSSHRunner returns a runner with the default timeout.
func NewSSHRunner() *SSHRunner {
	return &SSHRunner{Timeout: 30 * time.Second}
}

// Run invokes `ssh <target> <command>` with stdin piped through. A non-zero
// remote exit, connection failure, or timeout is returned as an error that
// includes the captured output.
func (r *SSHRunner) Run(target, identityPath, command string, stdin io.Reader) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := []string{
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
	}
	if identityPath != "" {
		args = append(args, "-i", identityPath)
	}
	args = append(args, target, command)

	cmd := exec.CommandContext(ctx, "ssh", args...)
	cmd.Stdin = stdin

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("ssh to %s timed out after %s", target, timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg != "" {
			return fmt.Errorf("ssh to %s failed: %w (%s)", target, err, msg)
		}
		return fmt.Errorf("ssh to %s failed: %w", target, err)
	}
	return nil
}
