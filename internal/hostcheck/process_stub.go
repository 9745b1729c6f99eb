//go:build !darwin

package hostcheck

// processRunning is a stub for non-darwin platforms. Reporting every hint as
// matched keeps the preflight permissive where no process scan exists.
func processRunning(hints []string) (bool, string) {
	return true, ""
}
