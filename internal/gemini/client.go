// Package gemini is the generation client for the Google generative
// language API. It owns prompt size checks, retry with exponential backoff,
// fan-out batch dispatch, and API key redaction.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config configures the client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MaxPromptBytes int
	MaxRetries     int
	MaxConcurrent  int
}

// DefaultConfig returns sensible defaults for everything but the key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
		Model:          "gemini-2.0-flash",
		Timeout:        2 * time.Minute,
		MaxPromptBytes: 200_000,
		MaxRetries:     3,
		MaxConcurrent:  5,
	}
}

// Client talks to the generateContent endpoint. Safe for concurrent use;
// each request is independent.
type Client struct {
	apiKey         string
	baseURL        string
	model          string
	maxPromptBytes int
	maxRetries     int
	maxConcurrent  int
	httpClient     *http.Client
	logger         *zap.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewClient creates a client from config. A nil logger is replaced with a
// no-op logger.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        baseURL,
		model:          model,
		maxPromptBytes: cfg.MaxPromptBytes,
		maxRetries:     cfg.MaxRetries,
		maxConcurrent:  maxConcurrent,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
		sleep:          time.Sleep,
	}
}

// request/response wire types for generateContent.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
			Role  string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends one prompt and returns the completion text.
//
// Failure modes: *SizeLimitError before dispatch when the prompt exceeds
// the byte ceiling, *APIError for a non-2xx status (transient statuses are
// retried with exponential backoff first), ErrEmptyResponse for a 2xx
// reply with no candidate text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini: API key not configured")
	}
	if c.maxPromptBytes > 0 && len(prompt) > c.maxPromptBytes {
		return "", &SizeLimitError{Size: len(prompt), Limit: c.maxPromptBytes}
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("gemini: failed to create request: %w", c.redactErr(err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("gemini: request failed: %w", c.redactErr(err))
			c.logger.Warn("request failed, will retry", zap.Int("attempt", attempt), zap.Error(lastErr))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("gemini: failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{Status: resp.StatusCode, Body: c.Redact(string(body))}
			if apiErr.Transient() {
				lastErr = apiErr
				c.logger.Warn("transient API failure, will retry",
					zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
				continue
			}
			return "", apiErr
		}

		var genResp generateResponse
		if err := json.Unmarshal(body, &genResp); err != nil {
			return "", fmt.Errorf("gemini: failed to parse response: %w", err)
		}
		if genResp.Error != nil {
			return "", &APIError{Status: genResp.Error.Code, Body: c.Redact(genResp.Error.Message)}
		}
		if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
			return "", ErrEmptyResponse
		}

		var result strings.Builder
		for _, p := range genResp.Candidates[0].Content.Parts {
			result.WriteString(p.Text)
		}
		text := strings.TrimSpace(result.String())
		if text == "" {
			return "", ErrEmptyResponse
		}

		c.logger.Debug("generation completed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("prompt_len", len(prompt)),
			zap.Int("response_len", len(text)))
		return text, nil
	}

	return "", fmt.Errorf("gemini: max retries exceeded: %w", lastErr)
}

// BatchRequest is one entry of a fan-out dispatch, correlated back to its
// group by Key and by position.
type BatchRequest struct {
	Key    string
	Prompt string
}

// BatchResult mirrors BatchRequest positionally. Exactly one of Text or
// Err is meaningful.
type BatchResult struct {
	Key  string
	Text string
	Err  error
}

// GenerateBatch dispatches all requests concurrently, bounded by
// MaxConcurrent, and returns results in input order. A failed request
// never aborts the batch; its failure is recorded in the corresponding
// result slot.
func (c *Client) GenerateBatch(ctx context.Context, reqs []BatchRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, r := range reqs {
		i, r := i, r
		g.Go(func() error {
			text, err := c.Generate(ctx, r.Prompt)
			results[i] = BatchResult{Key: r.Key, Text: text, Err: err}
			return nil // failures stay in the slot, the batch continues
		})
	}
	_ = g.Wait()
	return results
}

// Redact masks the API key anywhere it could surface in user-visible text.
func (c *Client) Redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "***")
}

func (c *Client) redactErr(err error) error {
	if err == nil {
		return nil
	}
	redacted := c.Redact(err.Error())
	if redacted == err.Error() {
		return err
	}
	return fmt.Errorf("%s", redacted)
}
