package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elementsenergies/flexrank/internal/scheduler"
	"github.com/elementsenergies/flexrank/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler daemon",
	Long: `Runs the recurring jobs:

  flexibility_pipeline  daily at 02:30
  category_refresh      daily at 03:30
  message_dispatch      every minute (when a gateway is configured)

Example:
  go run ./cmd/flexrank scheduler start
  go run ./cmd/flexrank scheduler list
  go run ./cmd/flexrank scheduler run flexibility_pipeline`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler builds the scheduler with every job the configuration
// allows. Dispatch is only registered when a gateway is configured.
func initScheduler(app *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(app.log)

	if err := sched.AddJob(jobs.NewFlexibilityJob(app.newRunner(), app.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewCategoryJob(app.newCategoryService(), app.log)); err != nil {
		return nil, err
	}

	if app.cfg.Notify.GatewayURL != "" {
		notifySvc, err := app.newNotifyService()
		if err != nil {
			return nil, err
		}
		if err := sched.AddJob(jobs.NewDispatchJob(notifySvc, app.log)); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sched, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sched, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sched, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job %s\n", args[0])
	if err := sched.RunNow(args[0]); err != nil {
		return err
	}

	history, err := sched.History(args[0])
	if err == nil {
		if last := history.Last(); last != nil && !last.Success {
			return fmt.Errorf("job %s failed: %s", args[0], last.Error)
		}
	}

	fmt.Printf("Job %s finished\n", args[0])
	return nil
}
