package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flexrank",
	Short: "Load flexibility ranking for electricity consumers",
	Long: `flexrank syncs hourly consumption readings, computes load
flexibility metrics and ranks clients by how much load they could
shift off peak.

Usage:
  go run ./cmd/flexrank [command]

Examples:
  go run ./cmd/flexrank migrate
  go run ./cmd/flexrank run
  go run ./cmd/flexrank run --scno 12345 --force
  go run ./cmd/flexrank categorize
  go run ./cmd/flexrank serve
  go run ./cmd/flexrank scheduler start`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
