package flex

import "math"

// Statistical helpers shared by the metric calculator. Every estimator
// here returns an optional value instead of panicking or emitting NaN:
// nil (or ok=false) means "undefined for this sample", which callers
// propagate as an absent metric.

// Float returns a pointer to v. Convenience for optional metrics.
func Float(v float64) *float64 {
	return &v
}

// SafeRatio divides num by den, returning nil when den is zero.
func SafeRatio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return Float(num / den)
}

// Mean returns the arithmetic mean, or nil for an empty sample.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return Float(sum / float64(len(values)))
}

// SampleStdDev returns the sample standard deviation (n-1 in the
// denominator), or nil when fewer than two values exist.
func SampleStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	mean := *Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return Float(math.Sqrt(sum / float64(len(values)-1)))
}

// Pearson returns the Pearson correlation coefficient between x and y.
// ok is false when the correlation is undefined: mismatched or too
// short vectors, or zero variance on either side.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}

	n := float64(len(x))
	meanX := 0.0
	meanY := 0.0
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0, false
	}

	r := cov / math.Sqrt(varX*varY)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}
