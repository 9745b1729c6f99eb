// Package cmd implements the openclaw-ctl command line interface. Every
// subcommand talks to the running daemon over the file IPC in ~/.cache/openclaw.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "openclaw-ctl",
	Short: "Control the openclaw wake-phrase daemon",
	Long: `openclaw-ctl controls the openclaw-core daemon.

Commands:
  status   - show the current session phase and forward counters
  start    - begin a new listening session
  stop     - stop the active session
  test     - run the forward connectivity self-test
  reload   - re-read the config file for future sessions
  quit     - shut the daemon down`,
}

func Execute() error {
	return rootCmd.Execute()
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
