package providers

import (
	"context"
	"net/http"
	"strings"
)

const (
	DefaultClaudeURL   = "https://api.anthropic.com"
	DefaultClaudeModel = "claude-3-5-sonnet-20240620"
	anthropicVersion   = "2023-06-01"
	defaultMaxTokens   = 2000
)

type ClaudeConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type claudeProvider struct {
	cfg ClaudeConfig
}

func NewClaude(cfg ClaudeConfig) Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultClaudeModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultClaudeURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &claudeProvider{cfg: cfg}
}

func (p *claudeProvider) Name() string         { return Claude }
func (p *claudeProvider) Available() bool      { return p.cfg.APIKey != "" }
func (p *claudeProvider) DefaultModel() string { return p.cfg.Model }

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *claudeProvider) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	if !p.Available() {
		return nil, ErrNotConfigured
	}

	model := opts.Model
	if model == "" {
		model = p.cfg.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var resp claudeResponse
	err := postJSON(ctx, p.cfg.HTTPClient, Claude, p.cfg.BaseURL+"/v1/messages", map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}, claudeRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	}, &resp)
	if err != nil {
		return nil, err
	}

	var text string
	if len(resp.Content) > 0 {
		text = resp.Content[0].Text
	}

	return &Response{
		Content:  text,
		Provider: Claude,
		Model:    model,
		Metadata: map[string]any{
			"usage": map[string]any{
				"input_tokens":  resp.Usage.InputTokens,
				"output_tokens": resp.Usage.OutputTokens,
			},
			"stop_reason": resp.StopReason,
		},
	}, nil
}
