// Package validation checks forward target configuration before any remote
// command is attempted, so misconfiguration surfaces as an actionable message
// instead of an opaque ssh failure.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// TargetCheck is the result of validating a forward target.
type TargetCheck struct {
	OK      bool
	Message string
	Issues  []string
	Fixes   []string
}

// CheckForwardTarget validates an ssh destination and optional identity file.
// It checks shape only; it does not attempt a connection.
func CheckForwardTarget(target, identityPath string) TargetCheck {
	var issues, fixes []string

	trimmed := strings.TrimSpace(target)
	switch {
	case trimmed == "":
		issues = append(issues, "forward target is empty")
		fixes = append(fixes, `set forward.target to "user@host" in the settings`)
	case strings.ContainsAny(trimmed, " \t"):
		issues = append(issues, fmt.Sprintf("forward target %q contains whitespace", trimmed))
		fixes = append(fixes, "use a plain ssh destination such as user@host")
	default:
		if at := strings.Index(trimmed, "@"); at == 0 || at == len(trimmed)-1 {
			issues = append(issues, fmt.Sprintf("forward target %q is missing the user or host part", trimmed))
			fixes = append(fixes, "use the user@host form, or a bare host")
		}
	}

	if identityPath != "" {
		if info, err := os.Stat(identityPath); err != nil {
			issues = append(issues, fmt.Sprintf("identity file %s is not readable", identityPath))
			fixes = append(fixes, "check forward.identity_path, or clear it to use the ssh agent")
		} else if info.IsDir() {
			issues = append(issues, fmt.Sprintf("identity path %s is a directory", identityPath))
			fixes = append(fixes, "point forward.identity_path at a private key file")
		}
	}

	if len(issues) > 0 {
		return TargetCheck{
			OK:      false,
			Message: issues[0],
			Issues:  issues,
			Fixes:   fixes,
		}
	}

	return TargetCheck{OK: true, Message: fmt.Sprintf("target %s looks valid", trimmed)}
}
