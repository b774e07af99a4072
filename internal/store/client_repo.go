package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// ClientRepository implements contracts.ClientRepository.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new client repository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// List returns all known clients ordered by scno.
func (r *ClientRepository) List(ctx context.Context) ([]contracts.Client, error) {
	query := `
		SELECT scno, short_name
		FROM clients
		ORDER BY scno ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []contracts.Client
	for rows.Next() {
		var c contracts.Client
		if err := rows.Scan(&c.SCNO, &c.ShortName); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// UpsertBatch upserts newly discovered clients, refreshing the display
// name on conflict.
func (r *ClientRepository) UpsertBatch(ctx context.Context, clients []contracts.Client) error {
	if len(clients) == 0 {
		return nil
	}

	query := `
		INSERT INTO clients (scno, short_name)
		VALUES ($1, $2)
		ON CONFLICT (scno) DO UPDATE SET
			short_name = EXCLUDED.short_name
	`

	batch := &pgx.Batch{}
	for _, c := range clients {
		batch.Queue(query, c.SCNO, c.ShortName)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range clients {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
