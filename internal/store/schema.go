// Package store implements the Postgres repositories behind the
// contracts interfaces.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema DDL. Everything is idempotent so the migrate command can run
// before any job without coordination.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		scno       VARCHAR PRIMARY KEY,
		short_name VARCHAR NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS consumption (
		scno        VARCHAR NOT NULL,
		date        DATE NOT NULL,
		hour        SMALLINT NOT NULL CHECK (hour BETWEEN 0 AND 23),
		consumption DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (scno, date, hour)
	)`,

	`CREATE TABLE IF NOT EXISTS flexibility_metrics (
		scno              VARCHAR NOT NULL,
		period            VARCHAR NOT NULL,
		lf                DOUBLE PRECISION,
		lvi               DOUBLE PRECISION,
		dlss              DOUBLE PRECISION,
		peak_ratio        DOUBLE PRECISION,
		flexibility_index DOUBLE PRECISION,
		flexibility_rank  INTEGER,
		reason            VARCHAR,
		calculated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (scno, period)
	)`,

	`CREATE TABLE IF NOT EXISTS dlss_results (
		scno          VARCHAR PRIMARY KEY,
		dlss_weekday  DOUBLE PRECISION,
		dlss_saturday DOUBLE PRECISION,
		dlss_sunday   DOUBLE PRECISION,
		calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS client_categories (
		scno              VARCHAR PRIMARY KEY,
		name              VARCHAR,
		avg_consumption   DOUBLE PRECISION,
		variability       DOUBLE PRECISION,
		consumption_level VARCHAR,
		variability_level VARCHAR,
		final_category    VARCHAR,
		calculated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS daily_messages (
		message_id   SERIAL PRIMARY KEY,
		message_text VARCHAR NOT NULL,
		send_time    VARCHAR NOT NULL,
		active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS client_contacts (
		scno   VARCHAR PRIMARY KEY REFERENCES clients(scno),
		phone  VARCHAR NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS message_log (
		scno       VARCHAR NOT NULL,
		message_id INTEGER NOT NULL,
		sent_date  DATE NOT NULL,
		sent_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (scno, message_id, sent_date)
	)`,

	`CREATE TABLE IF NOT EXISTS feedback_responses (
		scno            VARCHAR NOT NULL,
		response_date   DATE NOT NULL,
		shifted_percent INTEGER NOT NULL,
		raw_body        VARCHAR,
		received_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (scno, response_date)
	)`,
}

// Migrate applies the schema, creating any missing tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
