package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var categorizeDate string

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Refresh the client consumption categories",
	Long: `Syncs every client's readings and reclassifies them into the
consumption/variability buckets stored in client_categories.`,
	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	categorizeCmd.Flags().StringVar(&categorizeDate, "date", "", "sync through this date (YYYY-MM-DD, default yesterday)")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	targetEnd := time.Now().UTC().AddDate(0, 0, -1)
	if categorizeDate != "" {
		targetEnd, err = time.ParseInLocation("2006-01-02", categorizeDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", categorizeDate, err)
		}
	}

	n, err := app.newCategoryService().Refresh(context.Background(), targetEnd)
	if err != nil {
		return fmt.Errorf("category refresh: %w", err)
	}

	fmt.Printf("Categorized %d clients\n", n)
	return nil
}
