package forward

import (
	"strings"

	"github.com/sungkue/openclaw/internal/validation"
)

// CheckState is the progress of a connectivity self-test.
type CheckState string

const (
	CheckIdle     CheckState = "idle"
	CheckChecking CheckState = "checking"
	CheckOK       CheckState = "ok"
	CheckFailed   CheckState = "failed"
)

// CheckResult is the outcome of a connectivity self-test.
type CheckResult struct {
	State   CheckState
	Message string
	Issues  []string
	Fixes   []string
}

// probeCommand is a no-payload remote command used to verify connectivity
// without touching the configured command template.
const probeCommand = "true"

// Check validates cfg and runs a lightweight connectivity probe against the
// target. Synchronous; intended for an explicit "Test" action, never invoked
// from the detection lifecycle.
func Check(runner Runner, cfg Config) CheckResult {
	if strings.TrimSpace(cfg.Target) == "" {
		return CheckResult{State: CheckFailed, Message: "no forward target configured"}
	}

	if tc := validation.CheckForwardTarget(cfg.Target, cfg.IdentityPath); !tc.OK {
		return CheckResult{State: CheckFailed, Message: tc.Message, Issues: tc.Issues, Fixes: tc.Fixes}
	}

	if err := runner.Run(cfg.Target, cfg.IdentityPath, probeCommand, strings.NewReader("")); err != nil {
		return CheckResult{
			State:   CheckFailed,
			Message: err.Error(),
			Fixes: []string{
				"verify the host is reachable: ssh " + strings.TrimSpace(cfg.Target) + " true",
				"check that key-based auth works; the daemon runs ssh in batch mode",
			},
		}
	}

	return CheckResult{State: CheckOK, Message: "connected to " + strings.TrimSpace(cfg.Target)}
}
