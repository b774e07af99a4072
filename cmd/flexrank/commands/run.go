package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/internal/pipeline"
)

var (
	runForce bool
	runSCNOs []string
	runDate  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the flexibility pipeline once",
	Long: `Runs the full pipeline: refresh the client registry, sync every
client's readings, compute the flexibility metrics per period and
persist the cohort rankings.

Clients whose metrics were already computed today are skipped unless
--force is given.

Examples:
  go run ./cmd/flexrank run
  go run ./cmd/flexrank run --force
  go run ./cmd/flexrank run --scno 12345 --scno 67890
  go run ./cmd/flexrank run --date 2025-06-15`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runForce, "force", false, "recompute clients with fresh metrics")
	runCmd.Flags().StringArrayVar(&runSCNOs, "scno", nil, "restrict to specific clients (repeatable)")
	runCmd.Flags().StringVar(&runDate, "date", "", "sync through this date (YYYY-MM-DD, default yesterday)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := pipeline.Options{Force: runForce, SCNOs: runSCNOs}
	if runDate != "" {
		end, err := time.ParseInLocation("2006-01-02", runDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", runDate, err)
		}
		opts.TargetEnd = end
	}

	summary, err := app.newRunner().Run(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Pipeline finished: %d clients, %d skipped, %d failed, %d rows synced\n",
		summary.Clients, summary.Skipped, summary.Failed, summary.RowsSynced)
	for _, period := range []contracts.Period{contracts.PeriodWeekday, contracts.PeriodWeekend} {
		fmt.Printf("  %-8s %d clients ranked\n", period, summary.Ranked[period])
	}

	return nil
}
