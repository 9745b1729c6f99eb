// Package hostcheck verifies that the local transcription helper is actually
// running before a capture session is requested. On macOS it scans running
// applications; elsewhere the check is a no-op.
package hostcheck

import (
	"fmt"

	"github.com/sungkue/openclaw/internal/speech"
)

// Check returns nil when a running application matches one of the hints, or
// when hints is empty (the check is disabled). A miss means the host is not
// set up for speech capture.
func Check(hints []string) error {
	if len(hints) == 0 {
		return nil
	}
	if ok, _ := processRunning(hints); ok {
		return nil
	}
	return fmt.Errorf("transcription helper not running (looked for %v): %w",
		hints, speech.ErrMisconfiguredHost)
}
