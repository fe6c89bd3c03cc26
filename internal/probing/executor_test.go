package probing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// stubForecaster scripts per-target behavior for executor tests
type stubForecaster struct {
	mu           sync.Mutex
	failGenerate map[string]bool
	failUpdate   map[string]bool
	updated      float64
	delay        time.Duration

	inFlight    int64
	maxInFlight int64
}

func newStubForecaster(updated float64) *stubForecaster {
	return &stubForecaster{
		failGenerate: make(map[string]bool),
		failUpdate:   make(map[string]bool),
		updated:      updated,
	}
}

func (s *stubForecaster) Forecast(ctx context.Context, question, background string) (*probe.Forecast, error) {
	return &probe.Forecast{Probability: 0.5}, nil
}

func (s *stubForecaster) GenerateProbeText(ctx context.Context, question string, target probe.Target) (string, error) {
	current := atomic.AddInt64(&s.inFlight, 1)
	defer atomic.AddInt64(&s.inFlight, -1)
	for {
		prev := atomic.LoadInt64(&s.maxInFlight)
		if current <= prev || atomic.CompareAndSwapInt64(&s.maxInFlight, prev, current) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.failGenerate[target.TargetID] {
		return "", errors.New("generation transport error")
	}
	return fmt.Sprintf("counterfactual for %s", target.TargetID), nil
}

func (s *stubForecaster) UpdateForecast(ctx context.Context, question string, prior probe.Forecast, evidence string) (*probe.ForecastUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, fail := range s.failUpdate {
		if fail && evidence == fmt.Sprintf("counterfactual for %s", id) {
			return nil, errors.New("unparseable model response")
		}
	}
	return &probe.ForecastUpdate{UpdatedProbability: s.updated}, nil
}

func makeTargets(n int) []probe.Target {
	targets := make([]probe.Target, n)
	for i := range targets {
		targets[i] = probe.Target{
			TargetType: probe.TargetNode,
			TargetID:   fmt.Sprintf("node_%d", i),
			ProbeType:  probe.ProbeNodeNegateHigh,
		}
	}
	return targets
}

func TestExecuteAll_RecordsShifts(t *testing.T) {
	forecaster := newStubForecaster(0.7)
	executor := NewExecutor(forecaster, 2)

	baseline := probe.Forecast{Probability: 0.5}
	results := executor.ExecuteAll(context.Background(), "q", baseline, makeTargets(3), nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Fatalf("probe %s unexpectedly failed: %s", r.Target.TargetID, r.Error)
		}
		if r.AbsoluteShift == nil || *r.AbsoluteShift != 0.2 {
			t.Errorf("probe %s: expected shift 0.2, got %v", r.Target.TargetID, r.AbsoluteShift)
		}
		if r.ShiftDirection != probe.ShiftIncreased {
			t.Errorf("probe %s: expected increased, got %s", r.Target.TargetID, r.ShiftDirection)
		}
	}
}

func TestExecuteAll_FailureDoesNotAbortSiblings(t *testing.T) {
	forecaster := newStubForecaster(0.55)
	forecaster.failGenerate["node_0"] = true
	forecaster.failUpdate["node_1"] = true
	executor := NewExecutor(forecaster, 2)

	results := executor.ExecuteAll(context.Background(), "q", probe.Forecast{Probability: 0.5}, makeTargets(3), nil)

	if results[0].Success {
		t.Error("node_0 generation failure must yield a failed result")
	}
	if results[0].AbsoluteShift != nil || results[0].UpdatedProbability != nil {
		t.Error("failed result must carry null shift fields")
	}
	if results[1].Success {
		t.Error("node_1 update failure must yield a failed result")
	}
	if results[1].ProbeText == "" {
		t.Error("update-stage failure should retain the generated probe text")
	}
	if !results[2].Success {
		t.Errorf("node_2 must succeed despite sibling failures: %s", results[2].Error)
	}
}

func TestExecuteAll_BoundedConcurrency(t *testing.T) {
	forecaster := newStubForecaster(0.6)
	forecaster.delay = 20 * time.Millisecond
	executor := NewExecutor(forecaster, 2)

	executor.ExecuteAll(context.Background(), "q", probe.Forecast{Probability: 0.5}, makeTargets(8), nil)

	if observed := atomic.LoadInt64(&forecaster.maxInFlight); observed > 2 {
		t.Errorf("expected at most 2 concurrent probes, observed %d", observed)
	}
}

func TestExecuteAll_CancellationStopsIssuing(t *testing.T) {
	forecaster := newStubForecaster(0.6)
	forecaster.delay = 50 * time.Millisecond
	executor := NewExecutor(forecaster, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	results := executor.ExecuteAll(ctx, "q", probe.Forecast{Probability: 0.5}, makeTargets(6), nil)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed == 0 {
		t.Error("cancellation should fail probes that never acquired a slot")
	}
	if len(results) != 6 {
		t.Errorf("result set must match the slate even under cancellation, got %d", len(results))
	}
}

func TestExecuteAll_ProgressCallback(t *testing.T) {
	forecaster := newStubForecaster(0.6)
	executor := NewExecutor(forecaster, 2)

	var mu sync.Mutex
	var completions []int
	onProgress := func(result probe.Result, completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 4 {
			t.Errorf("expected total 4, got %d", total)
		}
		completions = append(completions, completed)
	}

	executor.ExecuteAll(context.Background(), "q", probe.Forecast{Probability: 0.5}, makeTargets(4), onProgress)

	if len(completions) != 4 {
		t.Fatalf("expected 4 progress callbacks, got %d", len(completions))
	}
	seen := make(map[int]bool)
	for _, c := range completions {
		seen[c] = true
	}
	for want := 1; want <= 4; want++ {
		if !seen[want] {
			t.Errorf("missing progress callback for completion %d", want)
		}
	}
}
