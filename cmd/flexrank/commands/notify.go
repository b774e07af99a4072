package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Message dispatch",
}

var notifyTickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Dispatch the messages due this minute",
	Long: `Runs one dispatch pass against the daily message schedule.
The scheduler daemon runs this every minute; the command exists for
manual checks and catch-up.`,
	RunE: runNotifyTick,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTickCmd)
}

func runNotifyTick(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	svc, err := app.newNotifyService()
	if err != nil {
		return err
	}

	sent, err := svc.Tick(context.Background())
	if err != nil {
		return fmt.Errorf("dispatch tick: %w", err)
	}

	fmt.Printf("Dispatched %d messages\n", sent)
	return nil
}
