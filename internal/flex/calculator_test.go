package flex

import (
	"math"
	"testing"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

func testCalculator() *Calculator {
	cfg := config.FlexConfig{
		PeakHours:        []int{6, 7, 8, 9, 18, 19, 20, 21},
		OffPeakThreshold: 0.3,
		PenaltyFactor:    0.7,
	}
	return NewCalculator(cfg, logger.NewNop())
}

// day returns a UTC date offset from a fixed Monday.
func day(offset int) time.Time {
	return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// flatDay emits an identical consumption for each of the 24 hours.
func flatDay(scno string, date time.Time, value float64) []contracts.Reading {
	readings := make([]contracts.Reading, 0, 24)
	for h := 0; h < 24; h++ {
		readings = append(readings, contracts.Reading{
			SCNO: scno, Date: date, Hour: h, Consumption: value,
		})
	}
	return readings
}

func TestComputeEmptyInput(t *testing.T) {
	if got := testCalculator().Compute(nil); got != nil {
		t.Errorf("Compute(nil) = %+v, want nil", got)
	}
}

func TestComputeLoadFactorBounds(t *testing.T) {
	calc := testCalculator()

	var readings []contracts.Reading
	// Three days with an arbitrary spiky shape
	for d := 0; d < 3; d++ {
		for h := 0; h < 24; h++ {
			readings = append(readings, contracts.Reading{
				SCNO: "A", Date: day(d), Hour: h,
				Consumption: float64((h*7+d*3)%11) + 1,
			})
		}
	}

	m := calc.Compute(readings)
	if m == nil || m.LF == nil {
		t.Fatal("LF should be defined")
	}
	if *m.LF < 0 || *m.LF > 1 {
		t.Errorf("LF = %v, outside [0,1]", *m.LF)
	}
}

func TestComputeFlatProfile(t *testing.T) {
	calc := testCalculator()

	var readings []contracts.Reading
	readings = append(readings, flatDay("A", day(0), 10)...)
	readings = append(readings, flatDay("A", day(1), 10)...)

	m := calc.Compute(readings)
	if m == nil {
		t.Fatal("Compute returned nil")
	}

	// Perfectly flat profile: mean equals peak
	if m.LF == nil || math.Abs(*m.LF-1) > 1e-12 {
		t.Errorf("LF = %v, want 1", m.LF)
	}

	// Identical daily totals: zero variability
	if m.LVI == nil || *m.LVI != 0 {
		t.Errorf("LVI = %v, want 0", m.LVI)
	}

	// Constant profiles have zero variance, so no correlation is
	// defined and DLSS must be absent
	if m.DLSS != nil {
		t.Errorf("DLSS = %v, want nil for zero-variance profiles", *m.DLSS)
	}

	// 8 peak hours out of 24 at equal consumption
	if math.Abs(m.PeakRatio-8.0/24.0) > 1e-12 {
		t.Errorf("PeakRatio = %v, want %v", m.PeakRatio, 8.0/24.0)
	}
}

func TestComputeLVIScenario(t *testing.T) {
	calc := testCalculator()

	// Client A: daily totals 100, 100, 100. Client B: 50, 150, 100.
	build := func(scno string, totals []float64) []contracts.Reading {
		var readings []contracts.Reading
		for d, total := range totals {
			// Split the total over two hours to keep shapes non-degenerate
			readings = append(readings,
				contracts.Reading{SCNO: scno, Date: day(d), Hour: 8, Consumption: total * 0.75},
				contracts.Reading{SCNO: scno, Date: day(d), Hour: 14, Consumption: total * 0.25},
			)
		}
		return readings
	}

	mA := calc.Compute(build("A", []float64{100, 100, 100}))
	mB := calc.Compute(build("B", []float64{50, 150, 100}))

	if mA == nil || mA.LVI == nil || mB == nil || mB.LVI == nil {
		t.Fatal("LVI should be defined for both clients")
	}

	if *mA.LVI != 0 {
		t.Errorf("Client A LVI = %v, want 0", *mA.LVI)
	}
	if *mB.LVI <= 0 {
		t.Errorf("Client B LVI = %v, want > 0", *mB.LVI)
	}
}

func TestComputeSingleDayDLSSUndefined(t *testing.T) {
	calc := testCalculator()

	m := calc.Compute(flatDay("A", day(0), 5))
	if m == nil {
		t.Fatal("Compute returned nil")
	}

	if m.DLSS != nil {
		t.Errorf("DLSS = %v, want nil for a single day", *m.DLSS)
	}
	// LVI also needs two dates
	if m.LVI != nil {
		t.Errorf("LVI = %v, want nil for a single day", *m.LVI)
	}
	// LF is still computable from one day
	if m.LF == nil {
		t.Error("LF should be defined for a single day")
	}
}

func TestComputeRepetitiveShapeDLSS(t *testing.T) {
	calc := testCalculator()

	// Same spiky shape every day: correlations with the typical day
	// are all exactly 1
	var readings []contracts.Reading
	for d := 0; d < 4; d++ {
		for h := 0; h < 24; h++ {
			readings = append(readings, contracts.Reading{
				SCNO: "A", Date: day(d), Hour: h,
				Consumption: float64(h%5) * 2,
			})
		}
	}

	m := calc.Compute(readings)
	if m == nil || m.DLSS == nil {
		t.Fatal("DLSS should be defined")
	}
	if math.Abs(*m.DLSS-1) > 1e-9 {
		t.Errorf("DLSS = %v, want 1 for identical shapes", *m.DLSS)
	}
}

func TestComputeDLSSRange(t *testing.T) {
	calc := testCalculator()

	// Two days with opposite shapes
	var readings []contracts.Reading
	for h := 0; h < 24; h++ {
		readings = append(readings,
			contracts.Reading{SCNO: "A", Date: day(0), Hour: h, Consumption: float64(h)},
			contracts.Reading{SCNO: "A", Date: day(1), Hour: h, Consumption: float64(23 - h)},
		)
	}

	m := calc.Compute(readings)
	if m == nil || m.DLSS == nil {
		t.Fatal("DLSS should be defined")
	}
	if *m.DLSS < -1 || *m.DLSS > 1 {
		t.Errorf("DLSS = %v, outside [-1,1]", *m.DLSS)
	}
}

func TestComputeZeroConsumption(t *testing.T) {
	calc := testCalculator()

	var readings []contracts.Reading
	readings = append(readings, flatDay("A", day(0), 0)...)
	readings = append(readings, flatDay("A", day(1), 0)...)

	m := calc.Compute(readings)
	if m == nil {
		t.Fatal("Compute returned nil")
	}

	if m.PeakRatio != 0 {
		t.Errorf("PeakRatio = %v, want 0 for zero total consumption", m.PeakRatio)
	}
	// All-zero days have zero peaks, so LF has no qualifying date
	if m.LF != nil {
		t.Errorf("LF = %v, want nil when every peak is zero", *m.LF)
	}
	// Daily totals are all zero: mean is zero, LVI undefined
	if m.LVI != nil {
		t.Errorf("LVI = %v, want nil for zero mean", *m.LVI)
	}
}

func TestComputeSumsCollidingHours(t *testing.T) {
	calc := testCalculator()

	// Two raw rows on the same (date, hour) must sum, not duplicate
	readings := []contracts.Reading{
		{SCNO: "A", Date: day(0), Hour: 8, Consumption: 30},
		{SCNO: "A", Date: day(0), Hour: 8, Consumption: 20},
		{SCNO: "A", Date: day(0), Hour: 14, Consumption: 25},
	}

	m := calc.Compute(readings)
	if m == nil || m.LF == nil {
		t.Fatal("LF should be defined")
	}

	// Profile is {8: 50, 14: 25}; mean 37.5, peak 50
	want := 37.5 / 50.0
	if math.Abs(*m.LF-want) > 1e-12 {
		t.Errorf("LF = %v, want %v", *m.LF, want)
	}
}

func TestComputePartialHours(t *testing.T) {
	calc := testCalculator()

	// Days with only a few observed hours still produce metrics; the
	// LF mean runs over observed hours only
	readings := []contracts.Reading{
		{SCNO: "A", Date: day(0), Hour: 6, Consumption: 40},
		{SCNO: "A", Date: day(0), Hour: 12, Consumption: 10},
		{SCNO: "A", Date: day(1), Hour: 6, Consumption: 35},
		{SCNO: "A", Date: day(1), Hour: 12, Consumption: 15},
	}

	m := calc.Compute(readings)
	if m == nil || m.LF == nil || m.LVI == nil {
		t.Fatal("LF and LVI should be defined")
	}

	// Day 0: mean 25 / peak 40, day 1: mean 25 / peak 35
	want := (25.0/40.0 + 25.0/35.0) / 2
	if math.Abs(*m.LF-want) > 1e-12 {
		t.Errorf("LF = %v, want %v", *m.LF, want)
	}
}
