package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrLLMUnavailable means the inference service could not be reached after
// the retry budget was exhausted. The workflow records it per contract
// instead of crashing the run.
var ErrLLMUnavailable = errors.New("llm service unavailable")

// RetryPolicy is an explicit bounded-retry policy: maximum attempts and a
// linear backoff schedule (Delay x attempt number between tries). Context
// cancellation and deadline expiry are never retried.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy mirrors the evaluation defaults: three attempts with a
// two second base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// backoff returns the wait before retry number attempt (1-based).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	return p.Delay * time.Duration(attempt)
}

// LLMAdapter submits a prompt to a local inference API and returns the raw
// response text for the normalizer to pick apart.
type LLMAdapter interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaAdapter talks to an Ollama-compatible /api/generate endpoint.
type OllamaAdapter struct {
	baseURL string
	model   string
	client  *http.Client
	retry   RetryPolicy
}

// NewOllamaAdapter constructs an OllamaAdapter. The request timeout bounds
// one generation call; retries are governed by the policy.
func NewOllamaAdapter(baseURL, model string, requestTimeout time.Duration, retry RetryPolicy) *OllamaAdapter {
	if requestTimeout <= 0 {
		requestTimeout = 3 * time.Minute
	}

	return &OllamaAdapter{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
		retry:   retry,
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

// Generate submits the prompt, retrying transient failures per the policy.
// The full response body is returned verbatim: streaming servers answer
// with NDJSON fragments that the LLM normalizer knows how to reassemble.
func (a *OllamaAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: a.model, Prompt: prompt, Temperature: 0, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= a.retry.MaxAttempts; attempt++ {
		body, err := a.post(ctx, payload)
		if err == nil {
			return body, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		slog.Warn("llm request failed", "attempt", attempt, "maxAttempts", a.retry.MaxAttempts, "error", err)

		if attempt < a.retry.MaxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(a.retry.backoff(attempt)):
			}
		}
	}

	return "", fmt.Errorf("%w: after %d attempts: %v", ErrLLMUnavailable, a.retry.MaxAttempts, lastErr)
}

func (a *OllamaAdapter) post(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Error("failed to close llm response body", "error", cerr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm responded %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if len(body) == 0 {
		return "", errors.New("empty response from llm")
	}

	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
