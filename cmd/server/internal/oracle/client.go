package oracle

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

	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/pkg/metrics"
)

// ErrNotConfigured is returned when the client is used without an API key.
var ErrNotConfigured = errors.New("ORACLE_NOT_CONFIGURED")

// Config holds connection settings for an OpenAI-compatible
// chat-completions endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the given API key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 60 * time.Second,
	}
}

// Client talks to a chat-completions endpoint. Every proposal method is a
// single attempt bounded by the configured timeout; callers decide whether
// a failed call fails the surrounding job.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ProposeDecomposition asks the oracle to break a goal into at most
// maxTasks candidate sub-tasks. The proposal is parsed but not repaired.
func (c *Client) ProposeDecomposition(ctx context.Context, goal string, maxTasks int, now time.Time) (*DecompositionProposal, error) {
	system, user := decompositionPrompts(goal, maxTasks, now)

	content, err := c.complete(ctx, "decompose", system, user, 0.6, 1500)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(content)
	if err != nil {
		metrics.RecordOracleRequest("decompose", "parse_error")
		return nil, fmt.Errorf("decomposition reply: %w", err)
	}

	var proposal DecompositionProposal
	if strings.HasPrefix(payload, "[") {
		// Legacy shape: a bare task array without the theme wrapper.
		if err := json.Unmarshal([]byte(payload), &proposal.Tasks); err != nil {
			metrics.RecordOracleRequest("decompose", "parse_error")
			return nil, fmt.Errorf("parse decomposition array: %w", err)
		}
	} else if err := json.Unmarshal([]byte(payload), &proposal); err != nil {
		metrics.RecordOracleRequest("decompose", "parse_error")
		return nil, fmt.Errorf("parse decomposition: %w", err)
	}
	return &proposal, nil
}

// ProposeDaySchedule asks the oracle to arrange the given tasks into a day
// schedule for date. Slot validation happens downstream.
func (c *Client) ProposeDaySchedule(ctx context.Context, tasks []models.Task, date models.Date, now time.Time) (*ScheduleProposal, error) {
	system, user, err := schedulePrompts(tasks, date, now)
	if err != nil {
		return nil, err
	}

	content, err := c.complete(ctx, "schedule", system, user, 0.7, 800)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(content)
	if err != nil {
		metrics.RecordOracleRequest("schedule", "parse_error")
		return nil, fmt.Errorf("schedule reply: %w", err)
	}

	var proposal ScheduleProposal
	if err := json.Unmarshal([]byte(payload), &proposal); err != nil {
		metrics.RecordOracleRequest("schedule", "parse_error")
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	return &proposal, nil
}

func (c *Client) complete(ctx context.Context, kind, system, user string, temperature float64, maxTokens int) (string, error) {
	if c.apiKey == "" {
		metrics.RecordOracleRequest(kind, "error")
		return "", ErrNotConfigured
	}

	// Apply the client timeout when the caller didn't bring a deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
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
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordOracleRequest(kind, "error")
		c.logger.Error("oracle request failed", "kind", kind, "error", err)
		return "", fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordOracleRequest(kind, "error")
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordOracleRequest(kind, "error")
		c.logger.Error("oracle request rejected", "kind", kind, "status", resp.StatusCode)
		return "", fmt.Errorf("oracle status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.RecordOracleRequest(kind, "error")
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		metrics.RecordOracleRequest(kind, "error")
		return "", fmt.Errorf("oracle error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		metrics.RecordOracleRequest(kind, "error")
		return "", errors.New("no completion returned")
	}

	metrics.RecordOracleRequest(kind, "success")
	metrics.RecordOracleDuration(kind, time.Since(start).Seconds())
	c.logger.Debug("oracle request completed",
		"kind", kind,
		"duration", time.Since(start),
		"response_len", len(parsed.Choices[0].Message.Content))
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
