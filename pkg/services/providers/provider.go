package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	Claude = "claude"
	Gemini = "gemini"

	DefaultTimeout  = 60 * time.Second
	maxResponseSize = 10 * 1024 * 1024
)

var (
	ErrNotConfigured   = errors.New("provider is not configured")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("provider returned no content")
)

// Error is a non-2xx answer from a model API
type Error struct {
	Provider string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
}

type Options struct {
	// Model overrides the provider's default model
	Model     string
	MaxTokens int
	// Search enables web search grounding where the provider supports it
	Search bool
}

type Response struct {
	Content  string
	Provider string
	Model    string
	Metadata map[string]any
}

type Provider interface {
	Name() string
	Available() bool
	DefaultModel() string
	Generate(ctx context.Context, prompt string, opts Options) (*Response, error)
}

func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Provider: provider, Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}

// errorMessage digs the message out of the {"error":{"message":...}} shape
// both model APIs use.
func errorMessage(data []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(data)
}
