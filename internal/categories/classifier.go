// Package categories classifies clients by consumption volume and
// variability into coarse operational buckets.
package categories

import (
	"fmt"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/internal/flex"
)

// Consumption level thresholds in kWh per hourly reading.
const (
	highConsumptionFloor   = 200.0
	mediumConsumptionFloor = 50.0
)

// highVariabilityFloor is the coefficient of variation, in percent,
// above which a client counts as high variability.
const highVariabilityFloor = 40.0

// Classify derives a client's category from its hourly readings.
// Returns nil when the client has no readings at all.
func Classify(client contracts.Client, readings []contracts.Reading) *contracts.Category {
	if len(readings) == 0 {
		return nil
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Consumption
	}

	avg := *flex.Mean(values)

	// Single readings have no spread; CV also collapses to zero when
	// the mean does, matching how the stored history is summarized
	sd := 0.0
	if s := flex.SampleStdDev(values); s != nil {
		sd = *s
	}
	cv := 0.0
	if avg != 0 {
		cv = sd / avg * 100
	}

	consumptionLevel := consumptionLevelFor(avg)
	variabilityLevel := variabilityLevelFor(cv)

	return &contracts.Category{
		SCNO:             client.SCNO,
		Name:             client.ShortName,
		AvgConsumption:   avg,
		Variability:      cv,
		ConsumptionLevel: consumptionLevel,
		VariabilityLevel: variabilityLevel,
		FinalCategory:    fmt.Sprintf("%s Consumer - %s Variability", consumptionLevel, variabilityLevel),
	}
}

func consumptionLevelFor(avg float64) string {
	switch {
	case avg >= highConsumptionFloor:
		return "High"
	case avg >= mediumConsumptionFloor:
		return "Medium"
	default:
		return "Low"
	}
}

func variabilityLevelFor(cv float64) string {
	if cv >= highVariabilityFloor {
		return "High"
	}
	return "Low"
}
