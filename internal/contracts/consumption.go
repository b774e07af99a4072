package contracts

import "time"

// Reading is one hourly consumption record for a metered client.
// Uniquely keyed by (SCNO, Date, Hour); re-ingestion overwrites the
// consumption value, never duplicates the row.
type Reading struct {
	SCNO        string    `json:"scno"`
	Date        time.Time `json:"date"`
	Hour        int       `json:"hour"` // 0..23
	Consumption float64   `json:"consumption"`
}

// Client is a metered client from the remote registry. SCNO is the
// service connection number that keys every other table.
type Client struct {
	SCNO      string `json:"scno"`
	ShortName string `json:"short_name"`
}

// DateKey renders a date as the canonical yyyy-mm-dd key used for
// grouping readings into daily profiles.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
