// Package macui provides the thin macOS-facing UI surface: user
// notifications delivered through osascript. All functions degrade to logged
// no-ops when osascript is unavailable.
package macui

import (
	"fmt"
	"log"
	"os/exec"
)

// SendNotification posts a native macOS notification via AppleScript.
func SendNotification(title, subtitle, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s" subtitle "%s"`,
		escapeAppleScript(message),
		escapeAppleScript(title),
		escapeAppleScript(subtitle))

	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("Error sending notification: %v, output: %s", err, output)
		return err
	}
	return nil
}

// NotifyWakeDetected announces a confirmed wake phrase.
func NotifyWakeDetected(transcript string) {
	_ = SendNotification("OpenClaw", "Wake phrase detected", transcript)
}

// NotifyFailure announces a failed listening session with its reason.
func NotifyFailure(reason string) {
	_ = SendNotification("OpenClaw", "Listening stopped", reason)
}

// escapeAppleScript escapes special characters in AppleScript strings.
func escapeAppleScript(s string) string {
	result := ""
	for _, ch := range s {
		switch ch {
		case '"':
			result += "\\\""
		case '\\':
			result += "\\\\"
		case '\n':
			result += "\\n"
		case '\r':
			result += "\\r"
		case '\t':
			result += "\\t"
		default:
			result += string(ch)
		}
	}
	return result
}
