// Package forward relays captured transcripts to a remote command over ssh.
// Dispatch is fire-and-forget: failures are logged, never surfaced to the
// detection lifecycle.
package forward

import "strings"

// Placeholder is the substitution marker replaced with the transcript text in
// command templates.
const Placeholder = "${text}"

// Config describes one forwarding target. Treated as an immutable snapshot:
// the controller reads it once at detection time, so later settings edits
// never affect an in-flight forward.
type Config struct {
	Enabled         bool
	Target          string // ssh destination, e.g. "user@host"
	IdentityPath    string // optional private key path
	CommandTemplate string // remote command, may contain Placeholder
}

// BuildCommand substitutes the transcript into the command template. Every
// occurrence of the placeholder is replaced with the literal, unescaped text;
// the transcript is additionally always piped to the remote command's stdin,
// so a template without the placeholder still receives it.
func BuildCommand(cfg Config, transcript string) string {
	return strings.ReplaceAll(cfg.CommandTemplate, Placeholder, transcript)
}

// skippable reports whether a dispatch should be silently dropped: forwarding
// disabled, or no usable target.
func skippable(cfg Config) bool {
	return !cfg.Enabled || strings.TrimSpace(cfg.Target) == ""
}
