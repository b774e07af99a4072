// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"

	"github.com/elementsenergies/flexrank/internal/pipeline"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// FlexibilityJob runs the full sync, score and rank pipeline once a
// day, after the previous day's readings have settled upstream.
type FlexibilityJob struct {
	runner *pipeline.Runner
	logger *logger.Logger
}

// NewFlexibilityJob creates the daily pipeline job.
func NewFlexibilityJob(runner *pipeline.Runner, log *logger.Logger) *FlexibilityJob {
	return &FlexibilityJob{runner: runner, logger: log}
}

func (j *FlexibilityJob) Name() string {
	return "flexibility_pipeline"
}

// Schedule runs at 02:30 daily.
func (j *FlexibilityJob) Schedule() string {
	return "30 2 * * *"
}

// Run executes one pipeline pass through yesterday.
func (j *FlexibilityJob) Run(ctx context.Context) error {
	summary, err := j.runner.Run(ctx, pipeline.Options{})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"clients":     summary.Clients,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"rows_synced": summary.RowsSynced,
	}).Info("Scheduled pipeline run finished")

	return nil
}
