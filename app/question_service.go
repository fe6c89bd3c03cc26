package app

import (
	"context"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/analysis"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/probing"
	"github.com/seanwkelley/belief-sensitivity-explorer/ports"
)

// Progress stage names, stable because the SSE layer forwards them verbatim
const (
	StageForecastComplete = "forecast_complete"
	StageAnalysisComplete = "analysis_complete"
	StageProbeComplete    = "probe_complete"
	StageQuestionComplete = "question_complete"
)

// ProgressEvent reports one stage transition while a question runs
type ProgressEvent struct {
	QuestionID core.QuestionID
	Stage      string
	Completed  int
	Total      int
	Result     *probe.Result
}

// ProgressSink receives progress events; it must not block
type ProgressSink func(ProgressEvent)

// QuestionService orchestrates the full sensitivity run for one question:
// elicit the forecast, analyze its graph, execute the probe slate, aggregate
// and persist.
type QuestionService struct {
	forecaster ports.Forecaster
	repository ports.ResultRepository
	executor   *probing.Executor
	logger     *internal.Logger
}

// NewQuestionService wires the service from its ports
func NewQuestionService(forecaster ports.Forecaster, repository ports.ResultRepository, executor *probing.Executor) *QuestionService {
	return &QuestionService{
		forecaster: forecaster,
		repository: repository,
		executor:   executor,
		logger:     internal.NewDefaultLogger(),
	}
}

// RunQuestion executes the complete pipeline under the caller-assigned id.
// A forecast or graph validation failure is fatal to the question;
// individual probe failures are recorded in the result set. A persistence
// failure is logged and the result is still returned to the caller.
func (s *QuestionService) RunQuestion(ctx context.Context, id core.QuestionID, question, background string, onProgress ProgressSink) (*probe.QuestionResult, error) {
	if id.String() == "" {
		id = core.QuestionID(core.NewID())
	}
	emit := func(event ProgressEvent) {
		if onProgress != nil {
			event.QuestionID = id
			onProgress(event)
		}
	}

	s.logger.Info("[QuestionService] starting question %s: %s", id, question)

	forecast, err := s.forecaster.Forecast(ctx, question, background)
	if err != nil {
		return nil, err
	}
	emit(ProgressEvent{Stage: StageForecastComplete})

	analyzed, err := analysis.AnalyzeGraph(forecast.Nodes, forecast.Edges)
	if err != nil {
		return nil, err
	}
	targets := analyzed.ProbeTargets
	emit(ProgressEvent{Stage: StageAnalysisComplete, Total: len(targets)})

	results := s.executor.ExecuteAll(ctx, question, *forecast, targets,
		func(result probe.Result, completed, total int) {
			r := result
			emit(ProgressEvent{Stage: StageProbeComplete, Completed: completed, Total: total, Result: &r})
		})

	result := &probe.QuestionResult{
		QuestionID:       id,
		Question:         question,
		CreatedAt:        core.Now(),
		Forecast:         *forecast,
		Analysis:         *analyzed,
		ProbeResults:     results,
		AggregateMetrics: analysis.ComputeAggregateMetrics(results),
	}

	if err := s.repository.Save(ctx, result); err != nil {
		s.logger.Warn("[QuestionService] failed to persist question %s: %v", id, err)
	}

	emit(ProgressEvent{Stage: StageQuestionComplete, Completed: len(targets), Total: len(targets)})
	s.logger.Info("[QuestionService] question %s complete: %d/%d probes succeeded",
		id, result.AggregateMetrics.SuccessfulProbes, result.AggregateMetrics.ProbeCount)

	return result, nil
}

// GetQuestion loads a stored result by id
func (s *QuestionService) GetQuestion(ctx context.Context, id core.QuestionID) (*probe.QuestionResult, error) {
	return s.repository.Get(ctx, id)
}

// ListQuestions returns all stored results in creation order
func (s *QuestionService) ListQuestions(ctx context.Context) ([]*probe.QuestionResult, error) {
	return s.repository.List(ctx)
}
