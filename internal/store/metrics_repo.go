package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// MetricsRepository implements contracts.MetricsRepository.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

// LastCalculatedAt returns the newest calculated_at across a client's
// metric rows, or nil when the client has never been processed.
func (r *MetricsRepository) LastCalculatedAt(ctx context.Context, scno string) (*time.Time, error) {
	query := `
		SELECT MAX(calculated_at)
		FROM flexibility_metrics
		WHERE scno = $1
	`

	var last *time.Time
	if err := r.pool.QueryRow(ctx, query, scno).Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return last, nil
}

// SaveRanked wholesale-upserts one period's ranked cohort. Every
// derived column is overwritten; stale values never survive a run.
func (r *MetricsRepository) SaveRanked(ctx context.Context, period contracts.Period, ranked []contracts.Ranked) error {
	if len(ranked) == 0 {
		return nil
	}

	query := `
		INSERT INTO flexibility_metrics (
			scno, period, lf, lvi, dlss, peak_ratio,
			flexibility_index, flexibility_rank, reason, calculated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (scno, period) DO UPDATE SET
			lf = EXCLUDED.lf,
			lvi = EXCLUDED.lvi,
			dlss = EXCLUDED.dlss,
			peak_ratio = EXCLUDED.peak_ratio,
			flexibility_index = EXCLUDED.flexibility_index,
			flexibility_rank = EXCLUDED.flexibility_rank,
			reason = EXCLUDED.reason,
			calculated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, row := range ranked {
		batch.Queue(query,
			row.SCNO, string(period), row.LF, row.LVI, row.DLSS,
			row.PeakRatio, row.Index, row.Rank, row.Reason,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range ranked {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// SaveDLSS upserts the per-day-type DLSS breakdown rows.
func (r *MetricsRepository) SaveDLSS(ctx context.Context, results []contracts.DLSSBreakdown) error {
	if len(results) == 0 {
		return nil
	}

	query := `
		INSERT INTO dlss_results (scno, dlss_weekday, dlss_saturday, dlss_sunday, calculated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (scno) DO UPDATE SET
			dlss_weekday = EXCLUDED.dlss_weekday,
			dlss_saturday = EXCLUDED.dlss_saturday,
			dlss_sunday = EXCLUDED.dlss_sunday,
			calculated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, row := range results {
		batch.Queue(query, row.SCNO, row.Weekday, row.Saturday, row.Sunday)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
