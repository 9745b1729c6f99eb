package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sungkue/openclaw/internal/ipc"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a new listening session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.CmdStart, "Listening session requested")
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active listening session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.CmdStop, "Stop requested")
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the config file for future sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.CmdReload, "Config reload requested")
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Shut the daemon down",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.CmdQuit, "Shutdown requested")
	},
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd, reloadCmd, quitCmd)
}

func sendCommand(c ipc.Command, confirmation string) error {
	if err := ipc.WriteCommand(c); err != nil {
		printError(fmt.Sprintf("could not send %q command", c), err)
		return err
	}
	fmt.Println(confirmation)
	return nil
}
