package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sungkue/openclaw/internal/config"
	"github.com/sungkue/openclaw/internal/forward"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the forward connectivity self-test",
	Long: `Validates the configured forward target and runs a no-op command
over ssh against it. The test does not touch the daemon's listening session.`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config", err)
		return err
	}

	fc := forward.Config{
		Enabled:         cfg.Forward.Enabled,
		Target:          cfg.Forward.Target,
		IdentityPath:    cfg.Forward.IdentityPath,
		CommandTemplate: cfg.Forward.CommandTemplate,
	}

	fmt.Printf("Testing forward target %q...\n", fc.Target)
	result := forward.Check(forward.NewSSHRunner(), fc)

	switch result.State {
	case forward.CheckOK:
		fmt.Printf("[+] %s\n", result.Message)
	default:
		fmt.Printf("[-] %s\n", result.Message)
		for _, issue := range result.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		if len(result.Fixes) > 0 {
			fmt.Println("Suggested fixes:")
			for _, fix := range result.Fixes {
				fmt.Printf("  - %s\n", fix)
			}
		}
		return fmt.Errorf("forward self-test failed")
	}

	return nil
}
