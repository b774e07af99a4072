package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// ConsumptionRepository implements contracts.ConsumptionRepository.
type ConsumptionRepository struct {
	pool *pgxpool.Pool
}

// NewConsumptionRepository creates a new consumption repository.
func NewConsumptionRepository(pool *pgxpool.Pool) *ConsumptionRepository {
	return &ConsumptionRepository{pool: pool}
}

// LatestDate returns the most recent stored reading date for a client.
func (r *ConsumptionRepository) LatestDate(ctx context.Context, scno string) (time.Time, bool, error) {
	query := `
		SELECT MAX(date)
		FROM consumption
		WHERE scno = $1
	`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, scno).Scan(&latest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

// ListBySCNO returns every stored reading for a client, ordered by
// date and hour.
func (r *ConsumptionRepository) ListBySCNO(ctx context.Context, scno string) ([]contracts.Reading, error) {
	query := `
		SELECT scno, date, hour, consumption
		FROM consumption
		WHERE scno = $1
		ORDER BY date ASC, hour ASC
	`

	rows, err := r.pool.Query(ctx, query, scno)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []contracts.Reading
	for rows.Next() {
		var reading contracts.Reading
		if err := rows.Scan(&reading.SCNO, &reading.Date, &reading.Hour, &reading.Consumption); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// SaveBatch upserts readings in one round trip. Conflicts on
// (scno, date, hour) overwrite only the consumption value.
func (r *ConsumptionRepository) SaveBatch(ctx context.Context, readings []contracts.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	query := `
		INSERT INTO consumption (scno, date, hour, consumption)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scno, date, hour) DO UPDATE SET
			consumption = EXCLUDED.consumption
	`

	batch := &pgx.Batch{}
	for _, reading := range readings {
		batch.Queue(query, reading.SCNO, reading.Date, reading.Hour, reading.Consumption)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range readings {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
