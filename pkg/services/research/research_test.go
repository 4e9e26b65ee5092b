package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// echoProvider answers with the task keyword found in the prompt
type echoProvider struct {
	name    string
	prompts []string
	fail    bool
}

func (p *echoProvider) Name() string         { return p.name }
func (p *echoProvider) Available() bool      { return true }
func (p *echoProvider) DefaultModel() string { return p.name + "-model" }

func (p *echoProvider) Generate(ctx context.Context, prompt string, opts providers.Options) (*providers.Response, error) {
	if p.fail {
		return nil, errors.New("model down")
	}
	p.prompts = append(p.prompts, prompt)
	model := opts.Model
	if model == "" {
		model = p.DefaultModel()
	}
	return &providers.Response{Content: p.name + ":" + firstLine(prompt), Provider: p.name, Model: model}, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

type mockTraffic struct {
	mock.Mock
}

func (m *mockTraffic) Lookup(ctx context.Context, d string) domain.TrafficData {
	return m.Called(ctx, d).Get(0).(domain.TrafficData)
}

func (m *mockTraffic) Batch(ctx context.Context, domains []string) map[string]domain.TrafficData {
	return m.Called(ctx, domains).Get(0).(map[string]domain.TrafficData)
}

func TestProviderFor_Defaults(t *testing.T) {
	svc := NewService(nil, nil)

	assert.Equal(t, providers.Gemini, svc.ProviderFor(domain.TaskCompetitorIdentification))
	assert.Equal(t, providers.Claude, svc.ProviderFor(domain.TaskExecutiveSummary))
	assert.Equal(t, providers.Claude, svc.ProviderFor("unknown_task"))
	assert.Empty(t, svc.AvailableProviders())
}

func TestConfigure(t *testing.T) {
	svc := NewService(providers.NewRegistry(&echoProvider{name: providers.Claude}), nil)

	err := svc.Configure(map[string]string{"bogus": "claude"})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.True(t, strings.HasPrefix(cfgErr.Detail, "Invalid task: bogus. Valid tasks: [competitor_identification,"))

	err = svc.Configure(map[string]string{"traffic_analysis": "gemini"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, "Provider gemini not available. Available: [claude]", err.Error())

	require.NoError(t, svc.Configure(map[string]string{"competitor_identification": "claude"}))
	assert.Equal(t, providers.Claude, svc.ProviderFor(domain.TaskCompetitorIdentification))
	assert.Equal(t, providers.Gemini, svc.ProviderFor(domain.TaskMetaAdsDiagnostic))
}

func TestExecuteTask(t *testing.T) {
	claude := &echoProvider{name: providers.Claude}
	svc := NewService(providers.NewRegistry(claude), nil)

	gen, err := svc.ExecuteTask(context.Background(), domain.TaskExecutiveSummary, "hello", "", "claude-3-haiku")
	require.NoError(t, err)
	assert.Equal(t, "claude:hello", gen.Content)
	assert.Equal(t, "claude-3-haiku", gen.Model)

	_, err = svc.ExecuteTask(context.Background(), domain.TaskTrafficAnalysis, "hello", "", "")
	assert.ErrorIs(t, err, providers.ErrUnknownProvider)
}

func TestExecute_SixSteps(t *testing.T) {
	claude := &echoProvider{name: providers.Claude}
	gemini := &echoProvider{name: providers.Gemini}
	svc := NewService(providers.NewRegistry(claude, gemini), nil)

	report, err := svc.Execute(context.Background(), Request{
		Domain:   "acme.com",
		MetaData: map[string]any{"spend": 10},
	})
	require.NoError(t, err)

	assert.Len(t, report.Steps, 6)
	assert.Len(t, claude.prompts, 4)
	assert.Len(t, gemini.prompts, 2)
	assert.Equal(t, "gemini:Analyze the market for acme.com and identify the top 5 direct competitors.", report.Competitors)
	assert.Equal(t, "claude:Create an executive summary for acme.com's market research analysis.", report.ExecutiveSummary)
	assert.Empty(t, report.TrafficAnalysis)
	assert.Nil(t, report.TrafficData)
	assert.Equal(t, providers.Gemini, report.Steps[domain.TaskMetaAdsDiagnostic].Provider)
	assert.Contains(t, gemini.prompts[1], `{"spend":10}`)
}

func TestExecute_WithTraffic(t *testing.T) {
	claude := &echoProvider{name: providers.Claude}
	gemini := &echoProvider{name: providers.Gemini}
	tr := &mockTraffic{}
	tr.On("Batch", mock.Anything, []string{"https://a.com", "b.com"}).Return(map[string]domain.TrafficData{
		"https://a.com": {Domain: "a.com", MonthlyVisits: "10K"},
		"b.com":         {Domain: "b.com", MonthlyVisits: "20K"},
	}).Once()

	svc := NewService(providers.NewRegistry(claude, gemini), tr)
	report, err := svc.Execute(context.Background(), Request{
		Domain: "acme.com",
		CompetitorData: map[string]any{
			"first":  map[string]any{"url": "https://a.com"},
			"second": "b.com",
			"third":  "not a domain",
			"fourth": 3.0,
		},
	})
	require.NoError(t, err)

	assert.Len(t, report.Steps, 7)
	assert.Len(t, report.TrafficData, 2)
	assert.NotEmpty(t, report.TrafficAnalysis)
	require.Len(t, gemini.prompts, 3)
	assert.Contains(t, gemini.prompts[1], "- b.com: 20K visits/mo")
	tr.AssertExpectations(t)
}

func TestExecute_CustomConfigAndFailure(t *testing.T) {
	claude := &echoProvider{name: providers.Claude}
	svc := NewService(providers.NewRegistry(claude), nil)

	_, err := svc.Execute(context.Background(), Request{Domain: "acme.com"})
	assert.ErrorIs(t, err, providers.ErrUnknownProvider)

	custom := map[string]string{}
	for _, task := range domain.ResearchTasks {
		custom[string(task)] = providers.Claude
	}
	report, err := svc.Execute(context.Background(), Request{Domain: "acme.com", CustomConfig: custom})
	require.NoError(t, err)
	assert.Len(t, report.Steps, 6)

	claude.fail = true
	_, err = svc.Execute(context.Background(), Request{Domain: "acme.com"})
	assert.Error(t, err)
}

func TestCompetitorDomains(t *testing.T) {
	got := CompetitorDomains(map[string]any{
		"b": "http://b.com",
		"a": map[string]any{"url": "a.com", "name": "A"},
		"c": map[string]any{"name": "no url"},
		"d": "plain",
	})
	assert.Equal(t, []string{"a.com", "http://b.com"}, got)
	assert.Empty(t, CompetitorDomains(nil))
}
