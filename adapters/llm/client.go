package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/seanwkelley/belief-sensitivity-explorer/internal"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/config"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/errors"
)

// Client talks to an OpenAI-compatible chat completion endpoint
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	logger      *internal.Logger
}

// NewClient creates a chat completion client from configuration
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		apiKey:      cfg.OpenAIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      internal.NewDefaultLogger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         float64         `json:"temperature"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a system message and prompt, returning the raw completion
// text. JSON mode requires the word "json" somewhere in the messages, so a
// hint is appended when the system message lacks it.
func (c *Client) Complete(ctx context.Context, systemMessage, prompt string) (string, error) {
	if !strings.Contains(strings.ToLower(systemMessage), "json") {
		systemMessage += " Respond with valid JSON output."
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature:         c.temperature,
		MaxCompletionTokens: c.maxTokens,
		ResponseFormat:      &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "failed to build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("[LLM] completion request model=%s prompt_len=%d", c.model, len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ExternalServiceError("llm", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ExternalServiceError("llm", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.ExternalServiceError("llm",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 300)))
	}

	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", errors.Wrap(err, "failed to decode chat response envelope")
	}
	if len(envelope.Choices) == 0 {
		return "", errors.ExternalServiceError("llm", fmt.Errorf("response contained no choices"))
	}

	return envelope.Choices[0].Message.Content, nil
}

// CompleteJSON runs a completion and decodes the content into T after
// stripping markdown fences and leading chatter
func CompleteJSON[T any](ctx context.Context, c *Client, systemMessage, prompt string) (*T, error) {
	content, err := c.Complete(ctx, systemMessage, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := cleanJSONContent(content)
	var result T
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, errors.Wrapf(err, "failed to parse model JSON: %s", truncate(cleaned, 200))
	}
	return &result, nil
}

// cleanJSONContent strips markdown code fences and any prose before the
// first JSON value. Models in JSON mode still occasionally wrap output.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")
	start := objStart
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
	}
	if start > 0 {
		content = content[start:]
	}
	return content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
