// Package syncer incrementally reconciles stored consumption readings
// with the remote source.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/internal/external/elements"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// Engine pulls the missing tail of a client's consumption history and
// upserts it. The window only ever moves forward: syncing never
// re-requests days at or before the latest stored date.
type Engine struct {
	source       contracts.ConsumptionSource
	repo         contracts.ConsumptionRepository
	lookbackDays int
	logger       *logger.Logger
}

// NewEngine creates a sync engine.
func NewEngine(source contracts.ConsumptionSource, repo contracts.ConsumptionRepository, cfg config.SyncConfig, log *logger.Logger) *Engine {
	return &Engine{
		source:       source,
		repo:         repo,
		lookbackDays: cfg.LookbackDays,
		logger:       log.WithField("module", "syncer"),
	}
}

// Sync brings one client current through targetEnd (inclusive) and
// returns the number of rows written. Clients with no stored history
// start from the configured lookback before targetEnd. A client that
// is already current short-circuits without any remote call.
//
// Failures are contained per day: a transport error or empty day skips
// that day and the window keeps advancing. Running Sync twice over the
// same window leaves the store identical to running it once.
func (e *Engine) Sync(ctx context.Context, scno string, targetEnd time.Time) (int, error) {
	targetEnd = midnight(targetEnd)

	latest, ok, err := e.repo.LatestDate(ctx, scno)
	if err != nil {
		return 0, fmt.Errorf("latest date for %s: %w", scno, err)
	}

	var fetchStart time.Time
	if ok {
		fetchStart = midnight(latest).AddDate(0, 0, 1)
	} else {
		fetchStart = targetEnd.AddDate(0, 0, -e.lookbackDays)
	}

	if fetchStart.After(targetEnd) {
		e.logger.WithField("scno", scno).Debug("Already current, nothing to sync")
		return 0, nil
	}

	var batch []contracts.Reading
	skippedDays := 0
	for day := fetchStart; !day.After(targetEnd); day = day.AddDate(0, 0, 1) {
		readings, err := e.source.FetchHourlyConsumption(ctx, scno, day)
		if err != nil {
			if errors.Is(err, elements.ErrNoData) {
				continue
			}
			// A failed day is skipped, not retried; tomorrow's run
			// will not revisit it either, the window moved on
			skippedDays++
			e.logger.WithError(err).WithFields(map[string]interface{}{
				"scno": scno,
				"date": contracts.DateKey(day),
			}).Warn("Day fetch failed, skipping")
			continue
		}
		batch = append(batch, readings...)
	}

	if len(batch) > 0 {
		if err := e.repo.SaveBatch(ctx, batch); err != nil {
			return 0, fmt.Errorf("save readings for %s: %w", scno, err)
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"scno":         scno,
		"from":         contracts.DateKey(fetchStart),
		"to":           contracts.DateKey(targetEnd),
		"rows":         len(batch),
		"skipped_days": skippedDays,
	}).Info("Sync window completed")

	return len(batch), nil
}

// midnight truncates a timestamp to its UTC date.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
