package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sungkue/openclaw/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's current session state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := ipc.ReadStatus()
	if err != nil {
		printError("daemon status unavailable (is openclaw-core running?)", err)
		return err
	}

	fmt.Println("OpenClaw Status")
	fmt.Println("===============")
	fmt.Printf("  Phase:      %s\n", status.Phase)
	if status.Transcript != "" {
		fmt.Printf("  Transcript: %q\n", status.Transcript)
	}
	if status.Reason != "" {
		fmt.Printf("  Reason:     %s\n", status.Reason)
	}
	if status.SessionID != "" {
		fmt.Printf("  Session:    %s\n", status.SessionID)
	}
	fmt.Printf("  Triggers:   %s\n", strings.Join(status.Triggers, ", "))
	fmt.Printf("  Engine:     %s\n", status.EngineName)
	fmt.Printf("  Wakes:      %d\n", status.WakeCount)

	if status.ForwardTarget != "" {
		fmt.Printf("  Forwarding: %s (sent=%d failed=%d dropped=%d)\n",
			status.ForwardTarget, status.ForwardSent, status.ForwardFailed, status.ForwardDropped)
	} else {
		fmt.Println("  Forwarding: disabled")
	}

	age := time.Since(status.Timestamp).Round(time.Second)
	fmt.Printf("  Updated:    %s ago\n", age)
	if age > 30*time.Second {
		fmt.Println()
		fmt.Println("  Warning: status is stale; the daemon may not be running.")
	}

	return nil
}
