package contracts

import (
	"fmt"
	"time"
)

// Period selects the day-type slice of a client's readings that a
// metrics row is computed over.
type Period string

const (
	PeriodWeekday  Period = "weekday"
	PeriodWeekend  Period = "weekend"
	PeriodSaturday Period = "saturday"
	PeriodSunday   Period = "sunday"
	PeriodAll      Period = "all"
)

// ParsePeriod converts a CLI/env string into a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeekday, PeriodWeekend, PeriodSaturday, PeriodSunday, PeriodAll:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// IncludesDate reports whether a date belongs to the period.
func (p Period) IncludesDate(t time.Time) bool {
	switch p {
	case PeriodWeekday:
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case PeriodWeekend:
		wd := t.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case PeriodSaturday:
		return t.Weekday() == time.Saturday
	case PeriodSunday:
		return t.Weekday() == time.Sunday
	case PeriodAll:
		return true
	}
	return false
}

// Metrics holds the four flexibility estimators for one client over
// one period. LF, LVI and DLSS are nil when statistically undefined
// (too few dates, zero denominators); absence is meaningful and must
// not be collapsed to zero. DLSS is the raw value in [-1,1].
type Metrics struct {
	LF        *float64
	LVI       *float64
	DLSS      *float64
	PeakRatio float64
}

// Complete reports whether all three ranked metrics are present.
// Clients with incomplete metrics are excluded from cohort ranking.
func (m *Metrics) Complete() bool {
	return m != nil && m.LF != nil && m.LVI != nil && m.DLSS != nil
}

// NormalizeDLSS maps a raw correlation in [-1,1] onto [0,1] for
// persistence and ranking.
func NormalizeDLSS(raw float64) float64 {
	return (raw + 1) / 2
}

// ClientMetrics pairs computed metrics with the client they belong to.
type ClientMetrics struct {
	SCNO    string
	Name    string
	Metrics Metrics
}

// Rank reasons persisted alongside the flexibility index.
const (
	ReasonNormal  = "normal"
	ReasonOffPeak = "already off-peak, less flexible"
)

// Ranked is one client's final position in a cohort ranking. DLSS is
// the normalized [0,1] form; the *_Norm fields are the direction
// corrected min-max normalizations the index averages.
type Ranked struct {
	SCNO      string
	Name      string
	LF        float64
	LVI       float64
	DLSS      float64
	PeakRatio float64

	LFNorm   float64
	LVINorm  float64
	DLSSNorm float64

	Index  float64
	Reason string
	Rank   int
}

// DLSSBreakdown is the per-day-type shape stability summary stored in
// dlss_results. Values are normalized to [0,1]; nil means undefined
// for that day type.
type DLSSBreakdown struct {
	SCNO     string
	Weekday  *float64
	Saturday *float64
	Sunday   *float64
}

// Category is the coarse consumption classification for one client.
type Category struct {
	SCNO             string
	Name             string
	AvgConsumption   float64
	Variability      float64 // coefficient of variation, percent
	ConsumptionLevel string
	VariabilityLevel string
	FinalCategory    string
}
