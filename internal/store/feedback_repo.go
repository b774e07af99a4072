package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// FeedbackRepository implements contracts.FeedbackRepository.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// SCNOByPhone resolves an inbound phone number to its client.
func (r *FeedbackRepository) SCNOByPhone(ctx context.Context, phone string) (string, bool, error) {
	query := `
		SELECT scno
		FROM client_contacts
		WHERE phone = $1
	`

	var scno string
	if err := r.pool.QueryRow(ctx, query, phone).Scan(&scno); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return scno, true, nil
}

// Record upserts a client's feedback reply for the day.
func (r *FeedbackRepository) Record(ctx context.Context, response contracts.FeedbackResponse) error {
	query := `
		INSERT INTO feedback_responses (scno, response_date, shifted_percent, raw_body, received_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (scno, response_date) DO UPDATE SET
			shifted_percent = EXCLUDED.shifted_percent,
			raw_body = EXCLUDED.raw_body,
			received_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		response.SCNO, response.Date, response.ShiftedPercent, response.RawBody,
	)
	return err
}
