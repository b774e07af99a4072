package flex

import "github.com/elementsenergies/flexrank/internal/contracts"

// FilterByPeriod returns the readings whose dates fall inside the
// period. Order is preserved; the input is never modified.
func FilterByPeriod(readings []contracts.Reading, period contracts.Period) []contracts.Reading {
	if period == contracts.PeriodAll {
		return readings
	}

	var filtered []contracts.Reading
	for _, r := range readings {
		if period.IncludesDate(r.Date) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
