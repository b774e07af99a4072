package jobs

import (
	"context"
	"fmt"

	"github.com/elementsenergies/flexrank/internal/notify"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// DispatchJob checks the message schedule every minute and sends what
// is due. The message log makes repeated minutes idempotent.
type DispatchJob struct {
	service *notify.Service
	logger  *logger.Logger
}

// NewDispatchJob creates the minute dispatch job.
func NewDispatchJob(service *notify.Service, log *logger.Logger) *DispatchJob {
	return &DispatchJob{service: service, logger: log}
}

func (j *DispatchJob) Name() string {
	return "message_dispatch"
}

// Schedule runs every minute.
func (j *DispatchJob) Schedule() string {
	return "* * * * *"
}

// Run dispatches the current minute's messages.
func (j *DispatchJob) Run(ctx context.Context) error {
	if _, err := j.service.Tick(ctx); err != nil {
		return fmt.Errorf("dispatch tick: %w", err)
	}
	return nil
}
