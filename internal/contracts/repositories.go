package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here; implementations live in
// internal/store. The pipeline depends on these, which keeps the per
// client workers testable with in-memory fakes.

// ConsumptionRepository manages hourly consumption readings.
type ConsumptionRepository interface {
	// LatestDate returns the most recent stored reading date for a
	// client. ok is false when the client has no readings at all.
	LatestDate(ctx context.Context, scno string) (date time.Time, ok bool, err error)

	// ListBySCNO returns every stored reading for a client.
	ListBySCNO(ctx context.Context, scno string) ([]Reading, error)

	// SaveBatch upserts readings; conflict on (scno, date, hour)
	// overwrites only the consumption value.
	SaveBatch(ctx context.Context, readings []Reading) error
}

// ClientRepository manages the client registry mirror.
type ClientRepository interface {
	List(ctx context.Context) ([]Client, error)
	UpsertBatch(ctx context.Context, clients []Client) error
}

// MetricsRepository manages derived flexibility metrics.
type MetricsRepository interface {
	// LastCalculatedAt returns the newest calculated_at across all of
	// a client's metric rows, or nil when none exist.
	LastCalculatedAt(ctx context.Context, scno string) (*time.Time, error)

	// SaveRanked wholesale-upserts one period's ranked cohort.
	SaveRanked(ctx context.Context, period Period, ranked []Ranked) error

	// SaveDLSS upserts the per-day-type DLSS breakdown rows.
	SaveDLSS(ctx context.Context, results []DLSSBreakdown) error
}

// CategoryRepository manages client consumption categories.
type CategoryRepository interface {
	SaveBatch(ctx context.Context, categories []Category) error
}

// ConsumptionSource is the remote API the sync engine pulls from.
type ConsumptionSource interface {
	// FetchHourlyConsumption returns the hourly readings for one
	// client and one day. A day with no data returns (nil, nil).
	FetchHourlyConsumption(ctx context.Context, scno string, date time.Time) ([]Reading, error)
}

// ClientSource lists clients from the remote registry.
type ClientSource interface {
	FetchClients(ctx context.Context) ([]Client, error)
}
