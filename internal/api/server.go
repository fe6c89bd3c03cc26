package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seanwkelley/belief-sensitivity-explorer/app"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal"
)

// Server exposes the question pipeline over HTTP with SSE progress streaming
type Server struct {
	service *app.QuestionService
	hub     *SSEHub
	logger  *internal.Logger
}

// NewServer creates the API server
func NewServer(service *app.QuestionService) *Server {
	return &Server{
		service: service,
		hub:     NewSSEHub(),
		logger:  internal.NewDefaultLogger(),
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/questions", s.handleCreateQuestion)
		api.GET("/questions", s.handleListQuestions)
		api.GET("/questions/:id", s.handleGetQuestion)
		api.GET("/events/:id", s.hub.HandleSSE)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

type createQuestionRequest struct {
	Question   string `json:"question" binding:"required"`
	Background string `json:"background"`
}

// handleCreateQuestion accepts a question and runs the pipeline in the
// background. The response carries the question id; clients follow progress
// over the SSE endpoint and fetch the document when complete.
func (s *Server) handleCreateQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := core.QuestionID(core.NewID())

	// The run owns its own context; the HTTP request ends immediately.
	go func() {
		ctx := context.Background()
		_, err := s.service.RunQuestion(ctx, id, req.Question, req.Background, s.progressSink())
		if err != nil {
			s.logger.Error("[API] question run failed: %v", err)
			s.hub.Broadcast(QuestionEvent{
				QuestionID: id.String(),
				EventType:  "question_failed",
				Data:       map[string]interface{}{"error": err.Error()},
				Timestamp:  time.Now(),
			})
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"question_id": id.String()})
}

// progressSink adapts service progress events to SSE broadcasts
func (s *Server) progressSink() app.ProgressSink {
	return func(event app.ProgressEvent) {
		data := map[string]interface{}{}
		if event.Result != nil {
			data["target_id"] = event.Result.Target.TargetID
			data["probe_type"] = string(event.Result.Target.ProbeType)
			data["success"] = event.Result.Success
		}

		s.hub.Broadcast(QuestionEvent{
			QuestionID: event.QuestionID.String(),
			EventType:  event.Stage,
			Completed:  event.Completed,
			Total:      event.Total,
			Data:       data,
			Timestamp:  time.Now(),
		})
	}
}

func (s *Server) handleGetQuestion(c *gin.Context) {
	id, err := core.ParseQuestionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.service.GetQuestion(c.Request.Context(), id)
	if stderrors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	if err != nil {
		s.logger.Error("[API] failed to load question %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load question"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListQuestions(c *gin.Context) {
	results, err := s.service.ListQuestions(c.Request.Context())
	if err != nil {
		s.logger.Error("[API] failed to list questions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list questions"})
		return
	}

	type questionSummary struct {
		QuestionID  string   `json:"question_id"`
		Question    string   `json:"question"`
		CreatedAt   string   `json:"created_at"`
		Probability float64  `json:"probability"`
		SSR         *float64 `json:"ssr"`
	}
	summaries := make([]questionSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, questionSummary{
			QuestionID:  r.QuestionID.String(),
			Question:    r.Question,
			CreatedAt:   r.CreatedAt.String(),
			Probability: r.Forecast.Probability,
			SSR:         r.AggregateMetrics.SSR,
		})
	}

	c.JSON(http.StatusOK, gin.H{"questions": summaries})
}
