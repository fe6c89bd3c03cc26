package ports

import (
	"context"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// Forecaster is the LLM collaborator: it elicits a probability forecast with
// its explanatory causal graph, generates adversarial counterfactual
// evidence for a probe target, and resubmits the forecast against that
// evidence. Any call may fail with a transport or parse error; during probe
// execution such a failure is scoped to a single probe result, during
// initial forecast generation it is fatal to the question.
type Forecaster interface {
	// Forecast elicits a probability and the causal graph behind it
	Forecast(ctx context.Context, question string, background string) (*probe.Forecast, error)

	// GenerateProbeText produces adversarial counterfactual evidence
	// targeting one graph element
	GenerateProbeText(ctx context.Context, question string, target probe.Target) (string, error)

	// UpdateForecast resubmits the question with new evidence against the
	// prior forecast state
	UpdateForecast(ctx context.Context, question string, prior probe.Forecast, evidence string) (*probe.ForecastUpdate, error)
}
