package research

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/metagrowth/growth-agent/pkg/services/traffic"
	"github.com/rs/zerolog"
)

const fallbackProvider = providers.Claude

var (
	ErrInvalidTask         = errors.New("invalid task")
	ErrProviderUnavailable = errors.New("provider not available")
)

// ConfigError rejects a task mapping. Detail is safe to show to API callers.
type ConfigError struct {
	Kind   error
	Detail string
}

func (e *ConfigError) Error() string { return e.Detail }
func (e *ConfigError) Unwrap() error { return e.Kind }

// DefaultProviders maps each task to the provider best suited for it
func DefaultProviders() map[domain.ResearchTask]string {
	return map[domain.ResearchTask]string{
		domain.TaskCompetitorIdentification: providers.Gemini,
		domain.TaskTrafficAnalysis:          providers.Gemini,
		domain.TaskMarketGapAnalysis:        providers.Claude,
		domain.TaskGrowthOpportunity:        providers.Claude,
		domain.TaskMetaAdsDiagnostic:        providers.Gemini,
		domain.TaskStrategicRecommendations: providers.Claude,
		domain.TaskExecutiveSummary:         providers.Claude,
	}
}

type Request struct {
	Domain         string
	MetaData       map[string]any
	CompetitorData map[string]any
	CustomConfig   map[string]string
}

type Service interface {
	Configure(config map[string]string) error
	ProviderFor(task domain.ResearchTask) string
	AvailableProviders() []string
	ExecuteTask(ctx context.Context, task domain.ResearchTask, prompt, provider, model string) (domain.Generation, error)
	Execute(ctx context.Context, req Request) (*domain.ResearchReport, error)
}

type service struct {
	registry providers.Registry
	traffic  traffic.Service

	mu     sync.RWMutex
	config map[domain.ResearchTask]string
}

// NewService builds the workflow service. trafficSvc may be nil, in which
// case reports carry no traffic data.
func NewService(registry providers.Registry, trafficSvc traffic.Service) Service {
	return &service{
		registry: registry,
		traffic:  trafficSvc,
		config:   DefaultProviders(),
	}
}

// validate checks task names and provider availability without applying them
func (s *service) validate(config map[string]string) (map[domain.ResearchTask]string, error) {
	merged := DefaultProviders()

	names := make([]string, 0, len(config))
	for name := range config {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		task, ok := domain.ParseResearchTask(name)
		if !ok {
			valid := make([]string, 0, len(domain.ResearchTasks))
			for _, t := range domain.ResearchTasks {
				valid = append(valid, string(t))
			}
			return nil, &ConfigError{
				Kind:   ErrInvalidTask,
				Detail: fmt.Sprintf("Invalid task: %s. Valid tasks: [%s]", name, strings.Join(valid, ", ")),
			}
		}
		merged[task] = config[name]
	}

	available := s.AvailableProviders()
	for _, name := range names {
		provider := config[name]
		if !slices.Contains(available, provider) {
			return nil, &ConfigError{
				Kind:   ErrProviderUnavailable,
				Detail: fmt.Sprintf("Provider %s not available. Available: [%s]", provider, strings.Join(available, ", ")),
			}
		}
	}
	return merged, nil
}

func (s *service) Configure(config map[string]string) error {
	merged, err := s.validate(config)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.config = merged
	s.mu.Unlock()
	return nil
}

func (s *service) ProviderFor(task domain.ResearchTask) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.config[task]; ok && p != "" {
		return p
	}
	return fallbackProvider
}

func (s *service) AvailableProviders() []string {
	if s.registry == nil {
		return []string{}
	}
	return s.registry.Available()
}

func (s *service) ExecuteTask(ctx context.Context, task domain.ResearchTask, prompt, provider, model string) (domain.Generation, error) {
	if provider == "" {
		provider = s.ProviderFor(task)
	}
	if s.registry == nil {
		return domain.Generation{}, fmt.Errorf("provider %s: %w", provider, providers.ErrNotConfigured)
	}

	p, err := s.registry.Get(provider)
	if err != nil {
		return domain.Generation{}, err
	}

	zerolog.Ctx(ctx).Debug().Str("task", string(task)).Str("provider", provider).Msg("Executing research task")

	resp, err := p.Generate(ctx, prompt, providers.Options{Model: model})
	if err != nil {
		return domain.Generation{}, fmt.Errorf("task %s: %w", task, err)
	}
	return domain.Generation{
		Content:  resp.Content,
		Provider: resp.Provider,
		Model:    resp.Model,
		Metadata: resp.Metadata,
	}, nil
}

// Execute runs the research steps in sequence and compiles the report.
// A custom config replaces the task mapping for this and later runs.
func (s *service) Execute(ctx context.Context, req Request) (*domain.ResearchReport, error) {
	if len(req.CustomConfig) > 0 {
		if err := s.Configure(req.CustomConfig); err != nil {
			return nil, err
		}
	}

	steps := reportSteps(req)

	report := &domain.ResearchReport{
		Domain: req.Domain,
		Steps:  make(map[domain.ResearchTask]domain.Generation, len(steps)+1),
	}

	if domains := CompetitorDomains(req.CompetitorData); len(domains) > 0 && s.traffic != nil {
		report.TrafficData = s.traffic.Batch(ctx, domains)
		steps = slices.Insert(steps, 1, trafficStep(req.Domain, report.TrafficData))
	}

	for _, st := range steps {
		gen, err := s.ExecuteTask(ctx, st.task, st.prompt, "", "")
		if err != nil {
			return nil, err
		}
		report.Steps[st.task] = gen
	}

	report.ExecutiveSummary = report.Steps[domain.TaskExecutiveSummary].Content
	report.Competitors = report.Steps[domain.TaskCompetitorIdentification].Content
	report.TrafficAnalysis = report.Steps[domain.TaskTrafficAnalysis].Content
	report.MarketGap = report.Steps[domain.TaskMarketGapAnalysis].Content
	report.GrowthOpportunities = report.Steps[domain.TaskGrowthOpportunity].Content
	report.MetaDiagnostic = report.Steps[domain.TaskMetaAdsDiagnostic].Content
	report.Recommendations = report.Steps[domain.TaskStrategicRecommendations].Content

	return report, nil
}

// CompetitorDomains collects competitor sites from intel data: objects
// with a "url" field, or strings that look like a URL or host name.
// Keys are visited in sorted order.
func CompetitorDomains(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var domains []string
	for _, k := range keys {
		switch v := data[k].(type) {
		case map[string]any:
			if u, ok := v["url"]; ok {
				if s, ok := u.(string); ok && s != "" {
					domains = append(domains, s)
				}
			}
		case string:
			if strings.Contains(v, "http") || strings.Contains(v, ".") {
				domains = append(domains, v)
			}
		}
	}
	return domains
}
