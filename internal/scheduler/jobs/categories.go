package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/elementsenergies/flexrank/internal/categories"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// CategoryJob refreshes the consumption categories daily, after the
// flexibility pipeline has synced everyone's readings.
type CategoryJob struct {
	service *categories.Service
	logger  *logger.Logger
}

// NewCategoryJob creates the daily category refresh job.
func NewCategoryJob(service *categories.Service, log *logger.Logger) *CategoryJob {
	return &CategoryJob{service: service, logger: log}
}

func (j *CategoryJob) Name() string {
	return "category_refresh"
}

// Schedule runs at 03:30 daily.
func (j *CategoryJob) Schedule() string {
	return "30 3 * * *"
}

// Run refreshes categories through yesterday.
func (j *CategoryJob) Run(ctx context.Context) error {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	n, err := j.service.Refresh(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("category refresh: %w", err)
	}

	j.logger.WithField("categorized", n).Info("Scheduled category refresh finished")
	return nil
}
