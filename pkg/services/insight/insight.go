package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/rs/zerolog"
)

const maxTokens = 800

// CannedInsight is returned when no model is configured or the call fails
const CannedInsight = "Summary:\n- Spend stable, ROAS above benchmark.\n" +
	"- Competitors leaning heavier into paid social.\n" +
	"- Opportunity to scale top audiences.\n\n" +
	"Optimizations:\n1. Increase budget on high-ROAS ad sets by 20%.\n" +
	"2. Launch Advantage+ shopping targeting lookalike 2%.\n" +
	"3. Refresh creative around UGC hooks emphasizing price advantage.\n\n" +
	"Defensive Moves:\n- Monitor CompetitorA's CPC trend weekly.\n" +
	"- Capture organic terms they dominate via content partnerships.\n" +
	"- Build affiliate promos to counter their influencer push.\n"

var promptTemplate = template.Must(template.New("insight").Funcs(template.FuncMap{
	"tojson": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}).Parse(`You are an e-commerce growth strategist.
Meta performance:
{{ tojson .Meta }}

Competitor intelligence:
{{ tojson .Competitor }}

Write:
1. 3 bullet insight summary
2. Top optimizations for Meta Ads to raise ROAS
3. Defensive moves vs competitors
Keep tone actionable.
`))

type Service interface {
	Generate(ctx context.Context, meta, competitor map[string]any) domain.Insight
}

type service struct {
	registry providers.Registry
	provider string
}

// NewService uses the named provider from the registry
func NewService(registry providers.Registry, provider string) Service {
	return &service{registry: registry, provider: strings.ToLower(provider)}
}

func RenderPrompt(meta, competitor map[string]any) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		Meta       map[string]any
		Competitor map[string]any
	}{meta, competitor})
	if err != nil {
		return "", fmt.Errorf("render insight prompt: %w", err)
	}
	return buf.String(), nil
}

func (s *service) Generate(ctx context.Context, meta, competitor map[string]any) domain.Insight {
	logger := zerolog.Ctx(ctx).With().Str("provider", s.provider).Logger()
	canned := domain.Insight{Text: CannedInsight, Provider: s.provider}

	if s.registry == nil {
		return canned
	}
	p, err := s.registry.Get(s.provider)
	if err != nil {
		logger.Debug().Err(err).Msg("No insight provider, using canned insight")
		return canned
	}

	prompt, err := RenderPrompt(meta, competitor)
	if err != nil {
		logger.Error().Err(err).Send()
		return canned
	}

	resp, err := p.Generate(ctx, prompt, providers.Options{MaxTokens: maxTokens})
	if err != nil {
		logger.Warn().Err(err).Msg("Insight generation failed, using canned insight")
		return canned
	}
	return domain.Insight{Text: resp.Content, Provider: s.provider}
}
