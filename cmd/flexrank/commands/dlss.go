package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dlssDate string

var dlssCmd = &cobra.Command{
	Use:   "dlss",
	Short: "Refresh the per-day-type shape stability breakdown",
	Long: `Recomputes the weekday/saturday/sunday shape stability values
for every client and upserts dlss_results, without re-ranking.`,
	RunE: runDLSS,
}

func init() {
	rootCmd.AddCommand(dlssCmd)
	dlssCmd.Flags().StringVar(&dlssDate, "date", "", "sync through this date (YYYY-MM-DD, default yesterday)")
}

func runDLSS(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var targetEnd time.Time
	if dlssDate != "" {
		targetEnd, err = time.ParseInLocation("2006-01-02", dlssDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", dlssDate, err)
		}
	}

	n, err := app.newRunner().RunDLSS(context.Background(), targetEnd)
	if err != nil {
		return fmt.Errorf("dlss refresh: %w", err)
	}

	fmt.Printf("Computed DLSS breakdown for %d clients\n", n)
	return nil
}
