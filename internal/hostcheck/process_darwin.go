//go:build darwin

package hostcheck

import (
	"strings"

	"github.com/progrium/darwinkit/macos/appkit"
)

// processRunning reports whether any running application matches one of the
// hints. Matches against both bundle IDs and localized names, case folded.
func processRunning(hints []string) (bool, string) {
	workspace := appkit.Workspace_SharedWorkspace()
	apps := workspace.RunningApplications()

	for _, app := range apps {
		if app.Ptr() == nil {
			continue
		}

		bundleID := strings.ToLower(app.BundleIdentifier())
		localizedName := strings.ToLower(app.LocalizedName())

		for _, hint := range hints {
			h := strings.ToLower(strings.TrimSpace(hint))
			if h == "" {
				continue
			}
			if bundleID != "" && strings.Contains(bundleID, h) {
				return true, app.BundleIdentifier()
			}
			if localizedName != "" && strings.Contains(localizedName, h) {
				return true, app.LocalizedName()
			}
		}
	}

	return false, ""
}
