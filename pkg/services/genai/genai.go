package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/metagrowth/growth-agent/pkg/extract"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/metagrowth/growth-agent/pkg/services/siteprofile"
	"github.com/rs/zerolog"
)

const (
	DefaultPrimaryModel  = "gemini-3-pro-preview"
	DefaultFallbackModel = "gemini-2.5-flash"
	DefaultFastModel     = "gemini-2.5-flash"

	defaultImpact = 85
)

var errNotArray = errors.New("competitor data is not an array")

// analysisPayload keeps loosely typed fields so malformed values fall back
// to defaults instead of failing the decode.
type analysisPayload struct {
	ExecutiveSummary any `json:"executiveSummary"`
	MarketGap        any `json:"marketGap"`
	GrossOpportunity any `json:"grossOpportunity"`
	MetaDiagnostic   any `json:"metaDiagnostic"`
	Options          any `json:"options"`
}

type GenerateRequest struct {
	Model  string
	Prompt string
	Search bool
}

// TextModel turns a prompt into raw model text
type TextModel interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type providerModel struct {
	provider providers.Provider
}

// FromProvider adapts a registry provider to TextModel
func FromProvider(p providers.Provider) TextModel {
	return &providerModel{provider: p}
}

func (m *providerModel) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	resp, err := m.provider.Generate(ctx, req.Prompt, providers.Options{Model: req.Model, Search: req.Search})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

type Options struct {
	Primary  string
	Fallback string
	Fast     string
	// Profiler, when set, adds the target site's landing page to the growth prompt
	Profiler siteprofile.Profiler
}

// Client runs the model-backed analysis operations. None of its methods
// return errors: failures are logged and replaced by canned results.
type Client struct {
	model TextModel
	opts  Options
}

func NewClient(model TextModel, opts Options) *Client {
	if opts.Primary == "" {
		opts.Primary = DefaultPrimaryModel
	}
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallbackModel
	}
	if opts.Fast == "" {
		opts.Fast = DefaultFastModel
	}
	return &Client{model: model, opts: opts}
}

// generate tries the primary model, then the fallback model exactly once
func (c *Client) generate(ctx context.Context, op, prompt string) (string, error) {
	if c.model == nil {
		return "", providers.ErrNotConfigured
	}

	text, err := c.model.Generate(ctx, GenerateRequest{Model: c.opts.Primary, Prompt: prompt, Search: true})
	if err == nil {
		return text, nil
	}

	zerolog.Ctx(ctx).Warn().Err(err).
		Str("operation", op).
		Str("model", c.opts.Primary).
		Str("fallback", c.opts.Fallback).
		Msg("Primary model failed, switching to fallback")

	return c.model.Generate(ctx, GenerateRequest{Model: c.opts.Fallback, Prompt: prompt, Search: true})
}

func (c *Client) IdentifyCompetitors(ctx context.Context, url string) []domain.Competitor {
	competitors, err := c.identifyCompetitors(ctx, url)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("url", url).Msg("Competitor scan failed")
		return domain.DemoCompetitors()
	}
	return competitors
}

func (c *Client) identifyCompetitors(ctx context.Context, url string) ([]domain.Competitor, error) {
	text, err := c.generate(ctx, "identify_competitors", competitorScanPrompt(url))
	if err != nil {
		return nil, err
	}

	var items []any
	if err := extract.Into(text, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: %.200q", errNotArray, text)
	}

	competitors := make([]domain.Competitor, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		competitors = append(competitors, domain.Competitor{
			Name:     stringOr(obj["name"], "Unknown Entity"),
			URL:      stringOr(obj["url"], "N/A"),
			Strength: stringOr(obj["strength"], "Analysis Pending"),
		})
	}
	return competitors, nil
}

func (c *Client) PerformGrowthAnalysis(ctx context.Context, url string, competitors []domain.Competitor) domain.AnalysisResult {
	result, err := c.performGrowthAnalysis(ctx, url, competitors)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("url", url).Msg("Growth analysis failed")
		return domain.AnalysisResult{
			ExecutiveSummary: "Unable to complete real-time analysis. Showing projected data based on sector averages.",
			Competitors:      competitors,
			GrossOpportunity: "Uncalculated",
			MarketGap:        "High CPM detected in sector",
			Options:          []domain.GrowthOption{},
			MetaDiagnostic:   "Connection Interrupted",
		}
	}
	return result
}

func (c *Client) performGrowthAnalysis(ctx context.Context, url string, competitors []domain.Competitor) (domain.AnalysisResult, error) {
	var siteContext string
	if c.opts.Profiler != nil {
		profile, err := c.opts.Profiler.Profile(ctx, url)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("url", url).Msg("Site profile unavailable")
		} else {
			siteContext = profile.Summary()
		}
	}

	text, err := c.generate(ctx, "growth_analysis", growthAnalysisPrompt(url, competitors, siteContext))
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	// A JSON value of the wrong shape leaves every field at its default.
	var payload analysisPayload
	if err := extract.Into(text, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return domain.AnalysisResult{}, fmt.Errorf("failed to parse analysis results: %w", err)
		}
	}

	return domain.AnalysisResult{
		ExecutiveSummary: stringOr(payload.ExecutiveSummary, "Analysis complete."),
		Competitors:      competitors,
		GrossOpportunity: stringOr(payload.GrossOpportunity, "Significant"),
		MarketGap:        stringOr(payload.MarketGap, "Undetected"),
		Options:          sanitizeOptions(payload.Options),
		MetaDiagnostic:   stringOr(payload.MetaDiagnostic, "Pending Connection"),
	}, nil
}

// AnalyzeMetaConnection asks the fast model for a one-line ad account diagnosis
func (c *Client) AnalyzeMetaConnection(ctx context.Context, url string) string {
	if c.model == nil {
		return "Manual audit required."
	}
	text, err := c.model.Generate(ctx, GenerateRequest{Model: c.opts.Fast, Prompt: metaDiagnosticPrompt(url)})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("Meta diagnostic failed")
		return "Manual audit required."
	}
	if text == "" {
		return "Diagnostic complete."
	}
	return text
}

func sanitizeOptions(v any) []domain.GrowthOption {
	items, ok := v.([]any)
	if !ok {
		return []domain.GrowthOption{}
	}

	options := make([]domain.GrowthOption, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)

		id := stringOr(obj["id"], "opt-"+strconv.Itoa(i))
		for seen[id] {
			id = fmt.Sprintf("%s-%d", id, i)
		}
		seen[id] = true

		options = append(options, domain.GrowthOption{
			ID:              id,
			Label:           stringOr(obj["label"], "Strategic Option"),
			Hypothesis:      stringOr(obj["hypothesis"], "Optimization required."),
			ProjectedImpact: impact(obj["projectedImpact"]),
			Requirements:    requirements(obj["requirements"]),
		})
	}
	return options
}

func impact(v any) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return defaultImpact
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func requirements(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, r := range t {
			out = append(out, stringify(r))
		}
		return out
	case string:
		return []string{t}
	default:
		return []string{}
	}
}

// stringOr returns v as text when it is a non-empty scalar, else def
func stringOr(v any, def string) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		if t != 0 {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case bool:
		if t {
			return "true"
		}
	}
	return def
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
