package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rmello/clamtap/internal/clamd"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the ClamAV daemon",
	Long: `Pings clamd on the configured Unix socket and prints its version.
Useful for verifying the socket path before starting the tap.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	client := clamd.NewClient(socketFlag, timeoutFlag)

	if _, err := client.Ping(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s cannot reach clamd at %s\n", color.RedString("✗"), client.SocketPath())
		return err
	}

	version, err := client.Version(cmd.Context())
	if err != nil {
		version = "unknown version"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s clamd reachable at %s\n", color.GreenString("✓"), client.SocketPath())
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", version)
	return nil
}
