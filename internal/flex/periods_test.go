package flex

import (
	"testing"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

func TestFilterByPeriod(t *testing.T) {
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	readings := []contracts.Reading{
		{SCNO: "A", Date: monday, Hour: 1, Consumption: 1},                  // Monday
		{SCNO: "A", Date: monday.AddDate(0, 0, 4), Hour: 2, Consumption: 2}, // Friday
		{SCNO: "A", Date: monday.AddDate(0, 0, 5), Hour: 3, Consumption: 3}, // Saturday
		{SCNO: "A", Date: monday.AddDate(0, 0, 6), Hour: 4, Consumption: 4}, // Sunday
	}

	tests := []struct {
		period contracts.Period
		want   int
	}{
		{contracts.PeriodWeekday, 2},
		{contracts.PeriodWeekend, 2},
		{contracts.PeriodSaturday, 1},
		{contracts.PeriodSunday, 1},
		{contracts.PeriodAll, 4},
	}

	for _, tt := range tests {
		got := FilterByPeriod(readings, tt.period)
		if len(got) != tt.want {
			t.Errorf("FilterByPeriod(%s) returned %d readings, want %d",
				tt.period, len(got), tt.want)
		}
	}

	if len(readings) != 4 {
		t.Error("FilterByPeriod must not modify its input")
	}
}
