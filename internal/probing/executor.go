package probing

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal"
	"github.com/seanwkelley/belief-sensitivity-explorer/ports"
)

// DefaultMaxConcurrent bounds how many probes run their two model calls at
// once. Upstream chat-completion APIs rate-limit aggressively; unbounded
// fan-out across targets does not survive contact with them.
const DefaultMaxConcurrent = 4

// ProgressFunc receives each probe result as it lands, with completion
// counters for progress reporting
type ProgressFunc func(result probe.Result, completed, total int)

// Executor runs the probe slate for one question. Per target it composes a
// two-stage pipeline: generate adversarial counterfactual text, then
// resubmit the forecast with that text. Targets run concurrently under a
// weighted semaphore; a failure in one probe never aborts its siblings.
type Executor struct {
	forecaster ports.Forecaster
	sem        *semaphore.Weighted
	logger     *internal.Logger
}

// NewExecutor creates an executor with a bounded concurrency limit
func NewExecutor(forecaster ports.Forecaster, maxConcurrent int64) *Executor {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Executor{
		forecaster: forecaster,
		sem:        semaphore.NewWeighted(maxConcurrent),
		logger:     internal.NewDefaultLogger(),
	}
}

// ExecuteAll probes every target and returns one result per target, in
// target order. Cancelling the context stops issuing further probes;
// targets that never ran are recorded as failed results so the result set
// always matches the slate. onProgress may be nil.
func (e *Executor) ExecuteAll(ctx context.Context, question string, baseline probe.Forecast, targets []probe.Target, onProgress ProgressFunc) []probe.Result {
	results := make([]probe.Result, len(targets))

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i, target := range targets {
		wg.Add(1)
		go func(i int, target probe.Target) {
			defer wg.Done()

			if err := e.sem.Acquire(ctx, 1); err != nil {
				results[i] = failedResult(target, "", err)
			} else {
				results[i] = e.executeOne(ctx, question, baseline, target)
				e.sem.Release(1)
			}

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()
			if onProgress != nil {
				onProgress(results[i], done, len(targets))
			}
		}(i, target)
	}

	wg.Wait()
	return results
}

// executeOne is the sequential two-stage probe pipeline for a single target
func (e *Executor) executeOne(ctx context.Context, question string, baseline probe.Forecast, target probe.Target) probe.Result {
	text, err := e.forecaster.GenerateProbeText(ctx, question, target)
	if err != nil {
		e.logger.Warn("probe %s (%s): generation failed: %v", target.TargetID, target.ProbeType, err)
		return failedResult(target, "", err)
	}

	update, err := e.forecaster.UpdateForecast(ctx, question, baseline, text)
	if err != nil {
		e.logger.Warn("probe %s (%s): forecast update failed: %v", target.TargetID, target.ProbeType, err)
		return failedResult(target, text, err)
	}

	updated := update.UpdatedProbability
	shift := math.Abs(updated - baseline.Probability)

	// Prefer the model's own direction classification; derive it from the
	// numeric shift only when the response omits it
	direction := update.ShiftDirection
	if direction == "" {
		direction = probe.ClassifyShift(baseline.Probability, updated)
	}

	e.logger.Debug("probe %s (%s): %.3f -> %.3f (%s)",
		target.TargetID, target.ProbeType, baseline.Probability, updated, direction)

	return probe.Result{
		Target:             target,
		ProbeText:          text,
		Success:            true,
		UpdatedProbability: &updated,
		AbsoluteShift:      &shift,
		ShiftDirection:     direction,
	}
}

// failedResult converts a probe-scoped error into a failed result with null
// shift fields rather than propagating it
func failedResult(target probe.Target, text string, err error) probe.Result {
	return probe.Result{
		Target:    target,
		ProbeText: text,
		Success:   false,
		Error:     err.Error(),
	}
}
