package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel = "gemini-1.5-pro"
)

type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type geminiProvider struct {
	cfg GeminiConfig
}

func NewGemini(cfg GeminiConfig) Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &geminiProvider{cfg: cfg}
}

func (p *geminiProvider) Name() string         { return Gemini }
func (p *geminiProvider) Available() bool      { return p.cfg.APIKey != "" }
func (p *geminiProvider) DefaultModel() string { return p.cfg.Model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	Tools            []geminiTool            `json:"tools,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (p *geminiProvider) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	if !p.Available() {
		return nil, ErrNotConfigured
	}

	model := opts.Model
	if model == "" {
		model = p.cfg.Model
	}

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	if opts.Search {
		req.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}
	if opts.MaxTokens > 0 {
		req.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: opts.MaxTokens}
	}

	endpoint := p.cfg.BaseURL + "/v1beta/models/" + url.PathEscape(model) + ":generateContent"

	var resp geminiResponse
	err := postJSON(ctx, p.cfg.HTTPClient, Gemini, endpoint, map[string]string{
		"x-goog-api-key": p.cfg.APIKey,
	}, req, &resp)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	return &Response{
		Content:  sb.String(),
		Provider: Gemini,
		Model:    model,
		Metadata: map[string]any{"candidates": len(resp.Candidates)},
	}, nil
}
