package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elementsenergies/flexrank/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the feedback webhook",
	Long: `Starts the HTTP listener receiving feedback replies from the
message gateway. Stops cleanly on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := webhook.NewServer(app.feedback, app.log)
	return server.ListenAndServe(ctx, ":"+app.cfg.Port)
}
