package flex

import (
	"math"
	"reflect"
	"testing"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

func testRanker() *Ranker {
	cfg := config.FlexConfig{
		PeakHours:        []int{6, 7, 8, 9, 18, 19, 20, 21},
		OffPeakThreshold: 0.3,
		PenaltyFactor:    0.7,
	}
	return NewRanker(cfg, logger.NewNop())
}

func member(scno string, lf, lvi, dlss, peak float64) contracts.ClientMetrics {
	return contracts.ClientMetrics{
		SCNO: scno,
		Name: "Client " + scno,
		Metrics: contracts.Metrics{
			LF:        Float(lf),
			LVI:       Float(lvi),
			DLSS:      Float(dlss),
			PeakRatio: peak,
		},
	}
}

func TestRankDropsIncompleteClients(t *testing.T) {
	cohort := []contracts.ClientMetrics{
		member("A", 0.5, 0.1, 0.8, 0.5),
		member("B", 0.9, 0.4, 0.2, 0.5),
		{
			SCNO: "C",
			Metrics: contracts.Metrics{
				LF:        Float(0.7),
				LVI:       Float(0.3),
				PeakRatio: 0.5, // no DLSS
			},
		},
	}

	ranked := testRanker().Rank(cohort)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 ranked clients, got %d", len(ranked))
	}
	for _, r := range ranked {
		if r.SCNO == "C" {
			t.Error("Client C lacks DLSS and must be excluded")
		}
	}
}

func TestRankNormalizationDirections(t *testing.T) {
	// A is peakier (low LF), more variable (high LVI) and less shape
	// stable (low DLSS) than B, so A must normalize to 1 on all three
	cohort := []contracts.ClientMetrics{
		member("A", 0.2, 0.6, 0.1, 0.5),
		member("B", 0.9, 0.1, 0.9, 0.5),
	}

	ranked := testRanker().Rank(cohort)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 ranked clients, got %d", len(ranked))
	}

	top := ranked[0]
	if top.SCNO != "A" {
		t.Fatalf("Expected A to rank first, got %s", top.SCNO)
	}
	if top.LFNorm != 1 || top.LVINorm != 1 || top.DLSSNorm != 1 {
		t.Errorf("Expected A norms (1,1,1), got (%v,%v,%v)",
			top.LFNorm, top.LVINorm, top.DLSSNorm)
	}

	bottom := ranked[1]
	if bottom.LFNorm != 0 || bottom.LVINorm != 0 || bottom.DLSSNorm != 0 {
		t.Errorf("Expected B norms (0,0,0), got (%v,%v,%v)",
			bottom.LFNorm, bottom.LVINorm, bottom.DLSSNorm)
	}
}

func TestRankZeroSpreadExcludesCohort(t *testing.T) {
	// Identical LF across the cohort: no spread, normalized LF is
	// undefined for everyone
	cohort := []contracts.ClientMetrics{
		member("A", 0.5, 0.1, 0.8, 0.5),
		member("B", 0.5, 0.4, 0.2, 0.5),
	}

	if ranked := testRanker().Rank(cohort); ranked != nil {
		t.Errorf("Expected empty ranking for zero LF spread, got %d rows", len(ranked))
	}
}

func TestRankOffPeakPenalty(t *testing.T) {
	cohort := []contracts.ClientMetrics{
		member("A", 0.2, 0.6, 0.1, 0.2), // peak ratio below 0.3
		member("B", 0.9, 0.1, 0.9, 0.5),
	}

	ranked := testRanker().Rank(cohort)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 ranked clients, got %d", len(ranked))
	}

	var a contracts.Ranked
	for _, r := range ranked {
		if r.SCNO == "A" {
			a = r
		}
	}

	// A's unpenalized norms are all 1, so the index must be exactly
	// 0.7 times their mean
	want := 0.7 * 1.0
	if math.Abs(a.Index-want) > 1e-12 {
		t.Errorf("Index = %v, want %v", a.Index, want)
	}
	if a.Reason != contracts.ReasonOffPeak {
		t.Errorf("Reason = %q, want %q", a.Reason, contracts.ReasonOffPeak)
	}

	for _, r := range ranked {
		if r.SCNO == "B" && r.Reason != contracts.ReasonNormal {
			t.Errorf("B reason = %q, want %q", r.Reason, contracts.ReasonNormal)
		}
	}
}

func TestRankDenseRankWithTies(t *testing.T) {
	// A normalizes to (1,1,0) and B to (0,1,1): both index 2/3. C sits
	// in the middle on LF and DLSS and lowest on LVI, index 1/3.
	cohort := []contracts.ClientMetrics{
		member("A", 0.2, 0.6, 0.9, 0.5),
		member("B", 0.8, 0.6, 0.1, 0.5),
		member("C", 0.5, 0.2, 0.5, 0.5),
	}

	ranked := testRanker().Rank(cohort)
	if len(ranked) != 3 {
		t.Fatalf("Expected 3 ranked clients, got %d", len(ranked))
	}

	if ranked[0].Index != ranked[1].Index {
		t.Fatalf("Expected a tie, got indices %v and %v", ranked[0].Index, ranked[1].Index)
	}

	gotRanks := []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank}
	if !reflect.DeepEqual(gotRanks, []int{1, 1, 2}) {
		t.Errorf("Ranks = %v, want [1 1 2]", gotRanks)
	}

	// Tied clients order deterministically by scno
	if ranked[0].SCNO != "A" || ranked[1].SCNO != "B" {
		t.Errorf("Tie order = %s, %s; want A, B", ranked[0].SCNO, ranked[1].SCNO)
	}
}

func TestRankDeterminism(t *testing.T) {
	cohort := []contracts.ClientMetrics{
		member("A", 0.3, 0.5, 0.4, 0.6),
		member("B", 0.7, 0.2, 0.8, 0.2),
		member("C", 0.5, 0.9, 0.1, 0.4),
		member("D", 0.4, 0.1, 0.6, 0.9),
	}

	first := testRanker().Rank(cohort)

	// Same cohort, shuffled input order
	shuffled := []contracts.ClientMetrics{cohort[2], cohort[0], cohort[3], cohort[1]}
	second := testRanker().Rank(shuffled)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Rank() is input-order dependent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRankOutputOrderedByRank(t *testing.T) {
	cohort := []contracts.ClientMetrics{
		member("A", 0.3, 0.5, 0.4, 0.6),
		member("B", 0.7, 0.2, 0.8, 0.2),
		member("C", 0.5, 0.9, 0.1, 0.4),
	}

	ranked := testRanker().Rank(cohort)
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Rank < ranked[i-1].Rank {
			t.Errorf("Output not ordered by rank: %d before %d",
				ranked[i-1].Rank, ranked[i].Rank)
		}
		if ranked[i].Index > ranked[i-1].Index {
			t.Errorf("Output not ordered by descending index")
		}
	}
}

func TestRankStoresNormalizedDLSS(t *testing.T) {
	cohort := []contracts.ClientMetrics{
		member("A", 0.2, 0.6, -1, 0.5),
		member("B", 0.9, 0.1, 1, 0.5),
	}

	ranked := testRanker().Rank(cohort)
	for _, r := range ranked {
		if r.DLSS < 0 || r.DLSS > 1 {
			t.Errorf("Persisted DLSS = %v, outside [0,1]", r.DLSS)
		}
	}
}

func TestRankEmptyCohort(t *testing.T) {
	if got := testRanker().Rank(nil); got != nil {
		t.Errorf("Rank(nil) = %v, want nil", got)
	}
}
