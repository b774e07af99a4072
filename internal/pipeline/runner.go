// Package pipeline orchestrates the daily flexibility run: refresh the
// client registry, sync and score every client through a bounded worker
// pool, then rank each cohort once all workers have finished.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/internal/flex"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// Syncer brings one client's readings current through targetEnd.
type Syncer interface {
	Sync(ctx context.Context, scno string, targetEnd time.Time) (int, error)
}

// Options tune a single run.
type Options struct {
	// TargetEnd is the last day (inclusive) the sync window covers.
	TargetEnd time.Time

	// Force recomputes clients whose metrics are already fresh today.
	Force bool

	// SCNOs restricts the run to the listed clients. Empty means all.
	SCNOs []string
}

// Summary reports what a run did.
type Summary struct {
	Clients    int
	Skipped    int // fresh, not recomputed
	Failed     int // per-client errors, contained
	RowsSynced int
	Ranked     map[contracts.Period]int
}

// Runner is the concurrency coordinator. Per-client work (sync, load,
// compute) runs on a bounded worker pool; ranking is cohort-global and
// only starts after every worker has finished.
type Runner struct {
	clients     contracts.ClientSource
	clientRepo  contracts.ClientRepository
	readings    contracts.ConsumptionRepository
	metricsRepo contracts.MetricsRepository
	syncer      Syncer
	calculator  *flex.Calculator
	ranker      *flex.Ranker

	workers int
	ignore  map[string]bool
	now     func() time.Time
	logger  *logger.Logger
}

// NewRunner wires the pipeline together.
func NewRunner(
	clients contracts.ClientSource,
	clientRepo contracts.ClientRepository,
	readings contracts.ConsumptionRepository,
	metricsRepo contracts.MetricsRepository,
	syncer Syncer,
	calculator *flex.Calculator,
	ranker *flex.Ranker,
	cfg config.SyncConfig,
	log *logger.Logger,
) *Runner {
	ignore := make(map[string]bool, len(cfg.IgnoreSCNOs))
	for _, s := range cfg.IgnoreSCNOs {
		ignore[s] = true
	}

	return &Runner{
		clients:     clients,
		clientRepo:  clientRepo,
		readings:    readings,
		metricsRepo: metricsRepo,
		syncer:      syncer,
		calculator:  calculator,
		ranker:      ranker,
		workers:     cfg.Workers,
		ignore:      ignore,
		now:         time.Now,
		logger:      log.WithField("module", "pipeline"),
	}
}

// rankedPeriods are the cohorts persisted with a full ranking.
var rankedPeriods = []contracts.Period{contracts.PeriodWeekday, contracts.PeriodWeekend}

// dlssPeriods feed the per-day-type shape stability breakdown.
var dlssPeriods = []contracts.Period{contracts.PeriodWeekday, contracts.PeriodSaturday, contracts.PeriodSunday}

// clientResult is what one worker hands back to the collector.
type clientResult struct {
	scno       string
	name       string
	rowsSynced int
	skipped    bool
	err        error

	// metrics per ranked period; nil when the period had no readings
	metrics map[contracts.Period]*contracts.Metrics
	dlss    *contracts.DLSSBreakdown
}

// Run executes one full pipeline pass. Per-client failures are
// contained: they are counted and logged, and the client is simply
// absent from the cohorts. Only registry or persistence failures abort
// the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	targetEnd := opts.TargetEnd
	if targetEnd.IsZero() {
		// Yesterday: today's readings are still accumulating
		targetEnd = r.now().UTC().AddDate(0, 0, -1)
	}

	roster, err := r.loadRoster(ctx, opts.SCNOs)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(map[string]interface{}{
		"clients": len(roster),
		"workers": r.workers,
		"through": contracts.DateKey(targetEnd),
	}).Info("Pipeline run starting")

	results := r.processClients(ctx, roster, targetEnd, opts.Force)

	summary := &Summary{
		Clients: len(roster),
		Ranked:  make(map[contracts.Period]int),
	}

	cohorts := make(map[contracts.Period][]contracts.ClientMetrics)
	var breakdowns []contracts.DLSSBreakdown
	for _, res := range results {
		if res.err != nil {
			summary.Failed++
			continue
		}
		if res.skipped {
			summary.Skipped++
			continue
		}
		summary.RowsSynced += res.rowsSynced

		for period, m := range res.metrics {
			if m == nil {
				continue
			}
			cohorts[period] = append(cohorts[period], contracts.ClientMetrics{
				SCNO:    res.scno,
				Name:    res.name,
				Metrics: *m,
			})
		}
		if res.dlss != nil {
			breakdowns = append(breakdowns, *res.dlss)
		}
	}

	for _, period := range rankedPeriods {
		ranked := r.ranker.Rank(cohorts[period])
		if err := r.metricsRepo.SaveRanked(ctx, period, ranked); err != nil {
			return nil, fmt.Errorf("save %s ranking: %w", period, err)
		}
		summary.Ranked[period] = len(ranked)
	}

	if len(breakdowns) > 0 {
		if err := r.metricsRepo.SaveDLSS(ctx, breakdowns); err != nil {
			return nil, fmt.Errorf("save dlss breakdown: %w", err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"clients":     summary.Clients,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"rows_synced": summary.RowsSynced,
	}).Info("Pipeline run completed")

	return summary, nil
}

// loadRoster refreshes the client registry mirror and returns the
// clients this run covers, with the ignore list and any explicit scno
// filter applied.
func (r *Runner) loadRoster(ctx context.Context, only []string) ([]contracts.Client, error) {
	fetched, err := r.clients.FetchClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch clients: %w", err)
	}
	if len(fetched) > 0 {
		if err := r.clientRepo.UpsertBatch(ctx, fetched); err != nil {
			return nil, fmt.Errorf("upsert clients: %w", err)
		}
	}

	all, err := r.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	var filter map[string]bool
	if len(only) > 0 {
		filter = make(map[string]bool, len(only))
		for _, s := range only {
			filter[s] = true
		}
	}

	roster := make([]contracts.Client, 0, len(all))
	for _, c := range all {
		if r.ignore[c.SCNO] {
			continue
		}
		if filter != nil && !filter[c.SCNO] {
			continue
		}
		roster = append(roster, c)
	}
	return roster, nil
}

// processClients fans the roster out over the worker pool and joins on
// completion. The returned slice has one entry per client.
func (r *Runner) processClients(ctx context.Context, roster []contracts.Client, targetEnd time.Time, force bool) []clientResult {
	jobs := make(chan contracts.Client)
	results := make([]clientResult, 0, len(roster))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(roster) {
		workers = len(roster)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for client := range jobs {
				res := r.processOne(ctx, client, targetEnd, force)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	for _, client := range roster {
		jobs <- client
	}
	close(jobs)
	wg.Wait()

	return results
}

// processOne syncs and scores a single client. A panic in the metric
// path is contained to this client.
func (r *Runner) processOne(ctx context.Context, client contracts.Client, targetEnd time.Time, force bool) (res clientResult) {
	res = clientResult{scno: client.SCNO, name: client.ShortName}

	defer func() {
		if rec := recover(); rec != nil {
			res.err = fmt.Errorf("client %s panicked: %v", client.SCNO, rec)
			r.logger.WithField("scno", client.SCNO).Errorf("Worker panic: %v", rec)
		}
	}()

	if !force {
		last, err := r.metricsRepo.LastCalculatedAt(ctx, client.SCNO)
		if err != nil {
			res.err = fmt.Errorf("freshness check for %s: %w", client.SCNO, err)
			return res
		}
		if last != nil && sameDay(*last, r.now()) {
			res.skipped = true
			return res
		}
	}

	rows, err := r.syncer.Sync(ctx, client.SCNO, targetEnd)
	if err != nil {
		res.err = fmt.Errorf("sync %s: %w", client.SCNO, err)
		r.logger.WithError(err).WithField("scno", client.SCNO).Error("Client sync failed")
		return res
	}
	res.rowsSynced = rows

	readings, err := r.readings.ListBySCNO(ctx, client.SCNO)
	if err != nil {
		res.err = fmt.Errorf("load readings for %s: %w", client.SCNO, err)
		return res
	}

	res.metrics = make(map[contracts.Period]*contracts.Metrics, len(rankedPeriods))
	for _, period := range rankedPeriods {
		res.metrics[period] = r.calculator.Compute(flex.FilterByPeriod(readings, period))
	}

	res.dlss = r.dlssBreakdown(client.SCNO, readings)
	return res
}

// RunDLSS recomputes only the per-day-type shape stability breakdown
// for every stored client, without touching the rankings. Clients are
// synced first so the breakdown reflects current readings.
func (r *Runner) RunDLSS(ctx context.Context, targetEnd time.Time) (int, error) {
	if targetEnd.IsZero() {
		targetEnd = r.now().UTC().AddDate(0, 0, -1)
	}

	clients, err := r.clientRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list clients: %w", err)
	}

	roster := make([]contracts.Client, 0, len(clients))
	for _, c := range clients {
		if !r.ignore[c.SCNO] {
			roster = append(roster, c)
		}
	}

	jobs := make(chan contracts.Client)
	var mu sync.Mutex
	var breakdowns []contracts.DLSSBreakdown
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(roster) {
		workers = len(roster)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for client := range jobs {
				if _, err := r.syncer.Sync(ctx, client.SCNO, targetEnd); err != nil {
					r.logger.WithError(err).WithField("scno", client.SCNO).Warn("DLSS sync failed")
					continue
				}
				readings, err := r.readings.ListBySCNO(ctx, client.SCNO)
				if err != nil {
					r.logger.WithError(err).WithField("scno", client.SCNO).Warn("DLSS load failed")
					continue
				}
				if b := r.dlssBreakdown(client.SCNO, readings); b != nil {
					mu.Lock()
					breakdowns = append(breakdowns, *b)
					mu.Unlock()
				}
			}
		}()
	}

	for _, client := range roster {
		jobs <- client
	}
	close(jobs)
	wg.Wait()

	if len(breakdowns) > 0 {
		if err := r.metricsRepo.SaveDLSS(ctx, breakdowns); err != nil {
			return 0, fmt.Errorf("save dlss breakdown: %w", err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"clients":  len(roster),
		"computed": len(breakdowns),
	}).Info("DLSS breakdown refresh completed")

	return len(breakdowns), nil
}

// dlssBreakdown computes the normalized per-day-type shape stability
// summary. Nil when no day type has a defined value.
func (r *Runner) dlssBreakdown(scno string, readings []contracts.Reading) *contracts.DLSSBreakdown {
	values := make(map[contracts.Period]*float64, len(dlssPeriods))
	any := false
	for _, period := range dlssPeriods {
		m := r.calculator.Compute(flex.FilterByPeriod(readings, period))
		if m == nil || m.DLSS == nil {
			continue
		}
		v := contracts.NormalizeDLSS(*m.DLSS)
		values[period] = &v
		any = true
	}
	if !any {
		return nil
	}

	return &contracts.DLSSBreakdown{
		SCNO:     scno,
		Weekday:  values[contracts.PeriodWeekday],
		Saturday: values[contracts.PeriodSaturday],
		Sunday:   values[contracts.PeriodSunday],
	}
}

// sameDay reports whether two timestamps fall on the same UTC date.
func sameDay(a, b time.Time) bool {
	return contracts.DateKey(a.UTC()) == contracts.DateKey(b.UTC())
}
