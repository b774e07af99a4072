package flex

import (
	"sort"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// Ranker normalizes one period's cohort metrics and produces the
// flexibility ranking. It operates on the whole cohort at once; the
// min-max normalization makes every score relative to peers, so there
// is no per-client incremental form of this step.
type Ranker struct {
	offPeakThreshold float64
	penaltyFactor    float64
	logger           *logger.Logger
}

// NewRanker creates a ranker with the configured off-peak penalty.
func NewRanker(cfg config.FlexConfig, log *logger.Logger) *Ranker {
	return &Ranker{
		offPeakThreshold: cfg.OffPeakThreshold,
		penaltyFactor:    cfg.PenaltyFactor,
		logger:           log.WithField("module", "ranker"),
	}
}

// Rank normalizes the cohort and returns it ordered by ascending rank.
// Clients missing any of LF, LVI or DLSS are dropped, as are clients
// whose normalized value is undefined because a metric has no spread
// across the cohort. Deterministic for a fixed cohort: ties share the
// same rank and output order falls back to scno.
func (r *Ranker) Rank(cohort []contracts.ClientMetrics) []contracts.Ranked {
	complete := make([]contracts.ClientMetrics, 0, len(cohort))
	for _, cm := range cohort {
		if cm.Metrics.Complete() {
			complete = append(complete, cm)
		}
	}

	if len(complete) == 0 {
		return nil
	}

	lfMin, lfMax := metricRange(complete, func(m contracts.Metrics) float64 { return *m.LF })
	lviMin, lviMax := metricRange(complete, func(m contracts.Metrics) float64 { return *m.LVI })
	dlssMin, dlssMax := metricRange(complete, func(m contracts.Metrics) float64 { return *m.DLSS })

	ranked := make([]contracts.Ranked, 0, len(complete))
	for _, cm := range complete {
		// Direction-corrected min-max: a flatter load (high LF) and a
		// stabler shape (high DLSS) both mean less room to shift, so
		// those two are inverted.
		lfNorm := SafeRatio(lfMax-*cm.Metrics.LF, lfMax-lfMin)
		lviNorm := SafeRatio(*cm.Metrics.LVI-lviMin, lviMax-lviMin)
		dlssNorm := SafeRatio(dlssMax-*cm.Metrics.DLSS, dlssMax-dlssMin)

		if lfNorm == nil || lviNorm == nil || dlssNorm == nil {
			continue
		}

		index := (*lfNorm + *lviNorm + *dlssNorm) / 3
		reason := contracts.ReasonNormal
		if cm.Metrics.PeakRatio < r.offPeakThreshold {
			index *= r.penaltyFactor
			reason = contracts.ReasonOffPeak
		}

		ranked = append(ranked, contracts.Ranked{
			SCNO:      cm.SCNO,
			Name:      cm.Name,
			LF:        *cm.Metrics.LF,
			LVI:       *cm.Metrics.LVI,
			DLSS:      contracts.NormalizeDLSS(*cm.Metrics.DLSS),
			PeakRatio: cm.Metrics.PeakRatio,
			LFNorm:    *lfNorm,
			LVINorm:   *lviNorm,
			DLSSNorm:  *dlssNorm,
			Index:     index,
			Reason:    reason,
		})
	}

	if len(ranked) == 0 {
		return nil
	}

	// Descending index; scno breaks ties for output order only
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Index != ranked[j].Index {
			return ranked[i].Index > ranked[j].Index
		}
		return ranked[i].SCNO < ranked[j].SCNO
	})

	// Dense rank: equal indices share a rank, no gaps after ties
	rank := 0
	for i := range ranked {
		if i == 0 || ranked[i].Index != ranked[i-1].Index {
			rank++
		}
		ranked[i].Rank = rank
	}

	r.logger.WithFields(map[string]interface{}{
		"cohort": len(cohort),
		"ranked": len(ranked),
	}).Info("Ranking completed")

	return ranked
}

// metricRange finds the min and max of one metric across the cohort.
func metricRange(cohort []contracts.ClientMetrics, get func(contracts.Metrics) float64) (float64, float64) {
	min := get(cohort[0].Metrics)
	max := min
	for _, cm := range cohort[1:] {
		v := get(cm.Metrics)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
