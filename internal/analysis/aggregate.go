package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// Probe type groupings for the aggregate ratios. edge_fabricate is never
// produced by the selector but stays in the fabricated set so recorded
// result sets that contain it still aggregate correctly.
var (
	highImpactTypes = map[probe.ProbeType]bool{
		probe.ProbeNodeNegateHigh:     true,
		probe.ProbeNodeStrengthen:     true,
		probe.ProbeEdgeNegateCritical: true,
	}
	lowImpactTypes = map[probe.ProbeType]bool{
		probe.ProbeNodeNegateLow:        true,
		probe.ProbeEdgeNegatePeripheral: true,
		probe.ProbeIrrelevant:           true,
	}
	fabricatedTypes = map[probe.ProbeType]bool{
		probe.ProbeEdgeFabricate: true,
		probe.ProbeMissingNode:   true,
	}
)

const (
	// acceptanceThreshold is the absolute shift at or above which a
	// fabricated probe counts as accepted
	acceptanceThreshold = 0.05

	// minCorrelationPairs is the smallest sample for which a Spearman
	// coefficient is reported
	minCorrelationPairs = 3
)

// ComputeAggregateMetrics folds probe results into the sensitivity summary.
// Failed probes count toward ProbeCount only; every ratio whose inputs are
// absent (no matching probes, zero denominator, too few pairs) is nil rather
// than zero.
func ComputeAggregateMetrics(results []probe.Result) probe.AggregateMetrics {
	successful := make([]probe.Result, 0, len(results))
	for _, r := range results {
		if r.Success && r.AbsoluteShift != nil {
			successful = append(successful, r)
		}
	}

	metrics := probe.AggregateMetrics{
		ProbeCount:       len(results),
		SuccessfulProbes: len(successful),
	}

	highShifts := shiftsOver(successful, func(t probe.ProbeType) bool { return highImpactTypes[t] })
	lowShifts := shiftsOver(successful, func(t probe.ProbeType) bool { return lowImpactTypes[t] })
	metrics.MeanShiftHigh = mean(highShifts)
	metrics.MeanShiftLow = mean(lowShifts)
	if len(highShifts) > 0 && len(lowShifts) > 0 && metrics.MeanShiftLow > 0 {
		metrics.SSR = ptr(metrics.MeanShiftHigh / metrics.MeanShiftLow)
	}

	negateShifts := shiftsOver(successful, func(t probe.ProbeType) bool { return t == probe.ProbeNodeNegateHigh })
	strengthenShifts := shiftsOver(successful, func(t probe.ProbeType) bool { return t == probe.ProbeNodeStrengthen })
	metrics.MeanShiftNegate = mean(negateShifts)
	metrics.MeanShiftStrengthen = mean(strengthenShifts)
	if metrics.MeanShiftStrengthen > 0 {
		metrics.AsymmetryIndex = ptr(metrics.MeanShiftNegate / metrics.MeanShiftStrengthen)
	}

	fabricated, accepted := 0, 0
	for _, r := range successful {
		if !fabricatedTypes[r.Target.ProbeType] {
			continue
		}
		fabricated++
		if *r.AbsoluteShift >= acceptanceThreshold {
			accepted++
		}
	}
	if fabricated > 0 {
		metrics.FalseAcceptanceRate = ptr(float64(accepted) / float64(fabricated))
	}

	// Every successful result partitions by its critical-path flag;
	// structural probes always land off-path.
	var onPath, offPath []float64
	for _, r := range successful {
		if r.Target.OnCriticalPath {
			onPath = append(onPath, *r.AbsoluteShift)
		} else {
			offPath = append(offPath, *r.AbsoluteShift)
		}
	}
	if len(onPath) > 0 && len(offPath) > 0 {
		metrics.CriticalPathPremium = ptr(mean(onPath) - mean(offPath))
	}

	metrics.ImportanceSensitivityCorrelation = importanceSensitivityCorrelation(successful)

	return metrics
}

// shiftsOver collects absolute shifts across successful probes matching the
// type predicate
func shiftsOver(successful []probe.Result, match func(probe.ProbeType) bool) []float64 {
	var shifts []float64
	for _, r := range successful {
		if match(r.Target.ProbeType) {
			shifts = append(shifts, *r.AbsoluteShift)
		}
	}
	return shifts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// importanceSensitivityCorrelation computes Spearman's rho between target
// importance and observed shift over probes with a positive importance
// score. Ties take the rank of their first occurrence in sorted order, so
// exact ties share a rank instead of averaging.
func importanceSensitivityCorrelation(successful []probe.Result) *float64 {
	var importances, shifts []float64
	for _, r := range successful {
		if r.Target.Importance > 0 {
			importances = append(importances, r.Target.Importance)
			shifts = append(shifts, *r.AbsoluteShift)
		}
	}

	n := len(importances)
	if n < minCorrelationPairs {
		return nil
	}

	importanceRanks := firstOccurrenceRanks(importances)
	shiftRanks := firstOccurrenceRanks(shifts)

	sumSquaredDiff := 0.0
	for i := 0; i < n; i++ {
		d := importanceRanks[i] - shiftRanks[i]
		sumSquaredDiff += d * d
	}

	nf := float64(n)
	rho := 1 - (6*sumSquaredDiff)/(nf*(nf*nf-1))
	rho = math.Max(-1, math.Min(1, rho))
	return ptr(rho)
}

// firstOccurrenceRanks assigns each value 1 + the index of its first
// occurrence in the ascending sort of the data
func firstOccurrenceRanks(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	firstIndex := make(map[float64]int, len(sorted))
	for i, v := range sorted {
		if _, seen := firstIndex[v]; !seen {
			firstIndex[v] = i
		}
	}

	ranks := make([]float64, len(data))
	for i, v := range data {
		ranks[i] = float64(firstIndex[v] + 1)
	}
	return ranks
}

func ptr(v float64) *float64 {
	return &v
}
