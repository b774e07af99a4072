package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// CategoryRepository implements contracts.CategoryRepository.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// SaveBatch upserts client categories, overwriting all derived columns.
func (r *CategoryRepository) SaveBatch(ctx context.Context, categories []contracts.Category) error {
	if len(categories) == 0 {
		return nil
	}

	query := `
		INSERT INTO client_categories (
			scno, name, avg_consumption, variability,
			consumption_level, variability_level, final_category, calculated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (scno) DO UPDATE SET
			avg_consumption = EXCLUDED.avg_consumption,
			variability = EXCLUDED.variability,
			consumption_level = EXCLUDED.consumption_level,
			variability_level = EXCLUDED.variability_level,
			final_category = EXCLUDED.final_category,
			calculated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(query,
			c.SCNO, c.Name, c.AvgConsumption, c.Variability,
			c.ConsumptionLevel, c.VariabilityLevel, c.FinalCategory,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range categories {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
