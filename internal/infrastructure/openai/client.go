package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/observability/metrics"
	"github.com/aryan0dhankhar/meetlog/internal/reliability/circuitbreaker"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"

	maxTokens   = 600
	temperature = 0.3
	timeout     = 60 * time.Second

	systemPrompt = `You summarize notes from external business meetings.
- Include the key points and any decisions or follow-ups.
- Write concise, readable sentences in the language of the notes.
- Organize the summary as bullet points.
- Keep the summary within 300 characters.`
)

// Failure reasons surfaced to callers. All of them wrap domain.ErrExternalService.
var (
	ErrBadCredentials error = &domain.ExternalServiceError{Reason: "API key is missing or invalid"}
	ErrQuotaExceeded  error = &domain.ExternalServiceError{Reason: "API quota exceeded"}
	ErrRateLimited    error = &domain.ExternalServiceError{Reason: "API rate limit reached, try again later"}
	ErrModelNotFound  error = &domain.ExternalServiceError{Reason: "model not found"}
	ErrEmptyResponse  error = &domain.ExternalServiceError{Reason: "summarizer returned an empty response"}
	ErrUnavailable    error = &domain.ExternalServiceError{Reason: "summarizer temporarily unavailable"}
)

// Config configures the chat completions client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client summarizes text through the OpenAI chat completions API. A single
// attempt is made per call; repeated upstream failures open the breaker.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates a new summarizer client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	breaker := circuitbreaker.NewCircuitBreaker(5, 1, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		metrics.SetBreakerState(int(to))
		logger.Warn("summarizer circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Summarize implements domain.Summarizer.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrBadCredentials
	}

	var summary string
	err := c.breaker.Execute(func() error {
		var err error
		summary, err = c.complete(ctx, text)
		return err
	}, countable)
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "", ErrUnavailable
	}
	return summary, err
}

func (c *Client) complete(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Summarize the following meeting notes:\n\n" + text},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrExternalService, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classify(resp.StatusCode, respBody)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrExternalService, err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	summary := strings.TrimSpace(out.Choices[0].Message.Content)
	if summary == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}

// classify maps an error response to one of the failure reasons.
func classify(status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	code := strings.ToLower(apiErr.Error.Code + " " + apiErr.Error.Type)

	switch {
	case status == http.StatusUnauthorized:
		return ErrBadCredentials
	case status == http.StatusTooManyRequests && (strings.Contains(code, "insufficient_quota") || strings.Contains(code, "billing")):
		return ErrQuotaExceeded
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusNotFound:
		return ErrModelNotFound
	}

	if apiErr.Error.Message != "" {
		return fmt.Errorf("%w: upstream error (%d): %s", domain.ErrExternalService, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%w: upstream error (%d)", domain.ErrExternalService, status)
}

// countable reports whether err says something about upstream health.
// Configuration problems do not trip the breaker.
func countable(err error) bool {
	switch {
	case errors.Is(err, ErrBadCredentials), errors.Is(err, ErrModelNotFound), errors.Is(err, ErrQuotaExceeded):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}
