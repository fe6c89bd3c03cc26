package llm

import (
	"context"
	"fmt"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal"
	"github.com/seanwkelley/belief-sensitivity-explorer/ports"
)

// ForecasterAdapter implements ports.Forecaster over the chat completion
// client. It owns prompt construction and response validation; retry and
// concurrency policy live with the caller.
type ForecasterAdapter struct {
	client *Client
	logger *internal.Logger
}

var _ ports.Forecaster = (*ForecasterAdapter)(nil)

// NewForecasterAdapter creates a forecaster over the given client
func NewForecasterAdapter(client *Client) *ForecasterAdapter {
	return &ForecasterAdapter{
		client: client,
		logger: internal.NewDefaultLogger(),
	}
}

// Forecast elicits a probability estimate with its causal graph. A forecast
// whose graph has no nodes is rejected; there is nothing to probe.
func (f *ForecasterAdapter) Forecast(ctx context.Context, question string, background string) (*probe.Forecast, error) {
	forecast, err := CompleteJSON[probe.Forecast](ctx, f.client, forecastSystemMessage, forecastPrompt(question, background))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrForecastFailed, err)
	}

	if forecast.Probability < 0 || forecast.Probability > 1 {
		return nil, fmt.Errorf("%w: probability %f out of [0,1]", core.ErrMalformedResponse, forecast.Probability)
	}
	if len(forecast.Nodes) == 0 {
		return nil, core.ErrEmptyGraph
	}

	f.logger.Info("[Forecaster] initial forecast probability=%.3f nodes=%d edges=%d",
		forecast.Probability, len(forecast.Nodes), len(forecast.Edges))
	return forecast, nil
}

// GenerateProbeText produces the counterfactual evidence for one target
func (f *ForecasterAdapter) GenerateProbeText(ctx context.Context, question string, target probe.Target) (string, error) {
	type probeTextResponse struct {
		ProbeText string `json:"probe_text"`
	}

	resp, err := CompleteJSON[probeTextResponse](ctx, f.client, probeTextSystemMessage, probeTextPrompt(question, target))
	if err != nil {
		return "", err
	}
	if resp.ProbeText == "" {
		return "", fmt.Errorf("%w: empty probe text", core.ErrMalformedResponse)
	}

	f.logger.Debug("[Forecaster] probe text generated target=%s type=%s", target.TargetID, target.ProbeType)
	return resp.ProbeText, nil
}

// UpdateForecast resubmits the question with counterfactual evidence
func (f *ForecasterAdapter) UpdateForecast(ctx context.Context, question string, prior probe.Forecast, evidence string) (*probe.ForecastUpdate, error) {
	update, err := CompleteJSON[probe.ForecastUpdate](ctx, f.client, updateSystemMessage, updatePrompt(question, prior, evidence))
	if err != nil {
		return nil, err
	}

	if update.UpdatedProbability < 0 || update.UpdatedProbability > 1 {
		return nil, fmt.Errorf("%w: updated probability %f out of [0,1]", core.ErrMalformedResponse, update.UpdatedProbability)
	}
	switch update.ShiftDirection {
	case probe.ShiftIncreased, probe.ShiftDecreased, probe.ShiftUnchanged, "":
	default:
		// Unknown labels are dropped; the executor reclassifies from the
		// numeric shift.
		update.ShiftDirection = ""
	}

	return update, nil
}
