// Package flex computes load flexibility metrics and ranks clients
// against their cohort.
package flex

import (
	"sort"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// Calculator computes the four flexibility estimators from a client's
// hourly readings. The estimators are independent: any subset may be
// undefined without blocking the others.
type Calculator struct {
	peakHours map[int]bool
	logger    *logger.Logger
}

// NewCalculator creates a metric calculator with the configured peak
// hour window.
func NewCalculator(cfg config.FlexConfig, log *logger.Logger) *Calculator {
	peak := make(map[int]bool, len(cfg.PeakHours))
	for _, h := range cfg.PeakHours {
		peak[h] = true
	}

	return &Calculator{
		peakHours: peak,
		logger:    log.WithField("module", "flex"),
	}
}

// dailyProfile is one date's hourly consumption, summed per hour when
// raw rows collide.
type dailyProfile map[int]float64

// Compute derives the metrics for one client over one period's
// readings. Returns nil when the input is empty.
func (c *Calculator) Compute(readings []contracts.Reading) *contracts.Metrics {
	if len(readings) == 0 {
		return nil
	}

	profiles := buildDailyProfiles(readings)

	m := &contracts.Metrics{
		LF:        c.loadFactor(profiles),
		LVI:       c.loadVariabilityIndex(profiles),
		DLSS:      c.shapeStability(profiles),
		PeakRatio: c.peakRatio(readings),
	}
	return m
}

// buildDailyProfiles groups readings into per-date hourly profiles,
// summing collisions on (date, hour).
func buildDailyProfiles(readings []contracts.Reading) map[string]dailyProfile {
	profiles := make(map[string]dailyProfile)
	for _, r := range readings {
		key := contracts.DateKey(r.Date)
		p, ok := profiles[key]
		if !ok {
			p = make(dailyProfile)
			profiles[key] = p
		}
		p[r.Hour] += r.Consumption
	}
	return profiles
}

// loadFactor is the mean over dates of mean/peak of the daily profile.
// Dates whose peak hour is zero are excluded. Nil when no date
// qualifies.
func (c *Calculator) loadFactor(profiles map[string]dailyProfile) *float64 {
	var ratios []float64
	for _, p := range profiles {
		sum := 0.0
		max := 0.0
		for _, v := range p {
			sum += v
			if v > max {
				max = v
			}
		}
		if max == 0 {
			continue
		}
		mean := sum / float64(len(p))
		ratios = append(ratios, mean/max)
	}
	return Mean(ratios)
}

// loadVariabilityIndex is the coefficient of variation of per-date
// total consumption. Needs at least two dates and a nonzero mean.
func (c *Calculator) loadVariabilityIndex(profiles map[string]dailyProfile) *float64 {
	totals := make([]float64, 0, len(profiles))
	for _, p := range profiles {
		total := 0.0
		for _, v := range p {
			total += v
		}
		totals = append(totals, total)
	}

	std := SampleStdDev(totals)
	if std == nil {
		return nil
	}
	mean := *Mean(totals)
	return SafeRatio(*std, mean)
}

// shapeStability is the mean Pearson correlation between each date's
// hourly profile and the typical (per-hour mean) day. The hour axis is
// the union of hours observed anywhere in the period; hours missing on
// a given date count as zero. Needs at least two dates; undefined
// correlations are skipped. Raw range [-1,1].
func (c *Calculator) shapeStability(profiles map[string]dailyProfile) *float64 {
	if len(profiles) < 2 {
		return nil
	}

	hourSet := make(map[int]bool)
	for _, p := range profiles {
		for h := range p {
			hourSet[h] = true
		}
	}
	hours := make([]int, 0, len(hourSet))
	for h := range hourSet {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	dates := make([]string, 0, len(profiles))
	for d := range profiles {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// Per-date vectors over the shared hour axis, plus the typical day
	columns := make([][]float64, len(dates))
	typical := make([]float64, len(hours))
	for i, d := range dates {
		col := make([]float64, len(hours))
		for j, h := range hours {
			col[j] = profiles[d][h]
			typical[j] += col[j]
		}
		columns[i] = col
	}
	for j := range typical {
		typical[j] /= float64(len(dates))
	}

	var correlations []float64
	for _, col := range columns {
		if r, ok := Pearson(col, typical); ok {
			correlations = append(correlations, r)
		}
	}
	return Mean(correlations)
}

// peakRatio is the share of total consumption in the configured peak
// hours. Zero consumption yields 0, not an error.
func (c *Calculator) peakRatio(readings []contracts.Reading) float64 {
	peak := 0.0
	total := 0.0
	for _, r := range readings {
		total += r.Consumption
		if c.peakHours[r.Hour] {
			peak += r.Consumption
		}
	}

	if total <= 0 {
		return 0
	}
	return peak / total
}
