package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// MessageRepository implements contracts.MessageRepository.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// PendingMessages returns the (contact, message) pairs due at sendTime
// that have no message_log row for day.
func (r *MessageRepository) PendingMessages(ctx context.Context, sendTime string, day time.Time) ([]contracts.PendingMessage, error) {
	query := `
		SELECT cc.scno, cc.phone, m.message_id, m.message_text
		FROM client_contacts cc
		JOIN daily_messages m ON m.active = TRUE
		WHERE cc.active = TRUE
		  AND m.send_time = $1
		  AND NOT EXISTS (
			SELECT 1
			FROM message_log l
			WHERE l.scno = cc.scno
			  AND l.message_id = m.message_id
			  AND l.sent_date = $2
		  )
		ORDER BY cc.scno, m.message_id
	`

	rows, err := r.pool.Query(ctx, query, sendTime, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []contracts.PendingMessage
	for rows.Next() {
		var p contracts.PendingMessage
		if err := rows.Scan(&p.SCNO, &p.Phone, &p.MessageID, &p.Text); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// LogSent records a dispatch. Conflict means the message was already
// logged for the day, which is fine.
func (r *MessageRepository) LogSent(ctx context.Context, scno string, messageID int, day time.Time) error {
	query := `
		INSERT INTO message_log (scno, message_id, sent_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (scno, message_id, sent_date) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, scno, messageID, day)
	return err
}
