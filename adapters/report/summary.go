package report

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// CorpusSummary aggregates sensitivity metrics across a corpus of completed
// questions. Pointer fields are nil when no question in the corpus defined
// the underlying metric.
type CorpusSummary struct {
	Questions        int
	ProbeCount       int
	SuccessfulProbes int

	MeanSSR   *float64
	MedianSSR *float64

	MeanFalseAcceptanceRate *float64
	MeanCorrelation         *float64

	MeanCriticalPathPremium *float64
	// PremiumPValue is the one-sided p-value of a one-sample t-test that the
	// critical-path premium is positive across questions; nil below two
	// defined premiums.
	PremiumPValue *float64
}

// Summarize folds per-question metrics into a corpus summary. Questions
// whose per-question metric is undefined are excluded from that metric's
// sample rather than counted as zero.
func Summarize(results []*probe.QuestionResult) CorpusSummary {
	summary := CorpusSummary{Questions: len(results)}

	var ssrs, fars, correlations, premiums []float64
	for _, r := range results {
		m := r.AggregateMetrics
		summary.ProbeCount += m.ProbeCount
		summary.SuccessfulProbes += m.SuccessfulProbes

		if m.SSR != nil {
			ssrs = append(ssrs, *m.SSR)
		}
		if m.FalseAcceptanceRate != nil {
			fars = append(fars, *m.FalseAcceptanceRate)
		}
		if m.ImportanceSensitivityCorrelation != nil {
			correlations = append(correlations, *m.ImportanceSensitivityCorrelation)
		}
		if m.CriticalPathPremium != nil {
			premiums = append(premiums, *m.CriticalPathPremium)
		}
	}

	if len(ssrs) > 0 {
		summary.MeanSSR = ptr(stat.Mean(ssrs, nil))
		if median, err := mstats.Median(ssrs); err == nil {
			summary.MedianSSR = ptr(median)
		}
	}
	if len(fars) > 0 {
		summary.MeanFalseAcceptanceRate = ptr(stat.Mean(fars, nil))
	}
	if len(correlations) > 0 {
		summary.MeanCorrelation = ptr(stat.Mean(correlations, nil))
	}
	if len(premiums) > 0 {
		summary.MeanCriticalPathPremium = ptr(stat.Mean(premiums, nil))
		summary.PremiumPValue = premiumPValue(premiums)
	}

	return summary
}

// premiumPValue runs a one-sample, one-sided t-test of mean(premiums) > 0
func premiumPValue(premiums []float64) *float64 {
	n := len(premiums)
	if n < 2 {
		return nil
	}

	mean, std := stat.MeanStdDev(premiums, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	t := mean / (std / math.Sqrt(float64(n)))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p := 1 - tDist.CDF(t)
	return ptr(p)
}

func ptr(v float64) *float64 {
	return &v
}
