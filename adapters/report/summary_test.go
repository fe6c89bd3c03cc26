package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

func questionWith(ssr, far, premium, correlation *float64, probes, successful int) *probe.QuestionResult {
	return &probe.QuestionResult{
		Question: "will it happen",
		AggregateMetrics: probe.AggregateMetrics{
			ProbeCount:                       probes,
			SuccessfulProbes:                 successful,
			SSR:                              ssr,
			FalseAcceptanceRate:              far,
			CriticalPathPremium:              premium,
			ImportanceSensitivityCorrelation: correlation,
		},
	}
}

func fptr(v float64) *float64 { return &v }

func TestSummarize_MeansAndMedian(t *testing.T) {
	results := []*probe.QuestionResult{
		questionWith(fptr(2.0), fptr(0.0), fptr(0.10), fptr(0.5), 9, 9),
		questionWith(fptr(4.0), fptr(0.5), fptr(0.20), fptr(0.7), 9, 8),
		questionWith(fptr(6.0), nil, fptr(0.30), nil, 9, 7),
	}

	summary := Summarize(results)

	assert.Equal(t, 3, summary.Questions)
	assert.Equal(t, 27, summary.ProbeCount)
	assert.Equal(t, 24, summary.SuccessfulProbes)

	require.NotNil(t, summary.MeanSSR)
	assert.InDelta(t, 4.0, *summary.MeanSSR, 1e-9)
	require.NotNil(t, summary.MedianSSR)
	assert.InDelta(t, 4.0, *summary.MedianSSR, 1e-9)

	require.NotNil(t, summary.MeanFalseAcceptanceRate)
	assert.InDelta(t, 0.25, *summary.MeanFalseAcceptanceRate, 1e-9)

	require.NotNil(t, summary.MeanCorrelation)
	assert.InDelta(t, 0.6, *summary.MeanCorrelation, 1e-9)

	require.NotNil(t, summary.MeanCriticalPathPremium)
	assert.InDelta(t, 0.20, *summary.MeanCriticalPathPremium, 1e-9)
}

func TestSummarize_UndefinedMetricsExcluded(t *testing.T) {
	results := []*probe.QuestionResult{
		questionWith(nil, nil, nil, nil, 9, 0),
		questionWith(fptr(3.0), nil, nil, nil, 9, 9),
	}

	summary := Summarize(results)

	require.NotNil(t, summary.MeanSSR)
	assert.InDelta(t, 3.0, *summary.MeanSSR, 1e-9)
	assert.Nil(t, summary.MeanFalseAcceptanceRate)
	assert.Nil(t, summary.MeanCorrelation)
	assert.Nil(t, summary.MeanCriticalPathPremium)
	assert.Nil(t, summary.PremiumPValue)
}

func TestSummarize_PremiumPValue(t *testing.T) {
	consistent := Summarize([]*probe.QuestionResult{
		questionWith(nil, nil, fptr(0.18), nil, 9, 9),
		questionWith(nil, nil, fptr(0.20), nil, 9, 9),
		questionWith(nil, nil, fptr(0.22), nil, 9, 9),
	})
	require.NotNil(t, consistent.PremiumPValue)
	assert.Less(t, *consistent.PremiumPValue, 0.05,
		"a consistently positive premium should test significant")

	single := Summarize([]*probe.QuestionResult{
		questionWith(nil, nil, fptr(0.20), nil, 9, 9),
	})
	assert.Nil(t, single.PremiumPValue, "one premium is not a sample")

	constant := Summarize([]*probe.QuestionResult{
		questionWith(nil, nil, fptr(0.20), nil, 9, 9),
		questionWith(nil, nil, fptr(0.20), nil, 9, 9),
	})
	assert.Nil(t, constant.PremiumPValue, "zero variance has no t statistic")
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.Questions)
	assert.Nil(t, summary.MeanSSR)
	assert.Nil(t, summary.MedianSSR)
}
