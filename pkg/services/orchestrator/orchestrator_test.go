package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/client"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) RefreshReport(ctx context.Context, accountID string, priority bool) error {
	args := m.Called(ctx, accountID, priority)
	return args.Error(0)
}

func (m *mockBackend) GetReport(ctx context.Context, accountID string) (*api.ReportSummary, error) {
	args := m.Called(ctx, accountID)
	report, _ := args.Get(0).(*api.ReportSummary)
	return report, args.Error(1)
}

// fakeClock advances instead of sleeping
type fakeClock struct {
	now    time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now += d
	return nil
}

type fixture struct {
	backend *mockBackend
	clock   *fakeClock
	orch    *Orchestrator
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{backend: &mockBackend{}, clock: &fakeClock{}}
	f.orch = New(f.backend, Options{Sleep: f.clock.Sleep})
	t.Cleanup(func() { f.backend.AssertExpectations(t) })
	return f
}

func reportWithCompetitors(t *testing.T, competitor string) *api.ReportSummary {
	t.Helper()
	var r api.ReportSummary
	require.NoError(t, json.Unmarshal([]byte(`{
		"account_id": "acme",
		"meta": {"diagnostic": "ROAS trending down"},
		"competitor": `+competitor+`,
		"insight": {"summary": "Summary text", "recommendations": ["Scale video: test reels", "Retarget"]}
	}`), &r))
	return &r
}

var notFound = &client.APIError{Status: http.StatusNotFound, Detail: "Report not found"}

func TestDiscoverCompetitors_LiveAfterRetries(t *testing.T) {
	f := setupFixture(t)
	report := reportWithCompetitors(t, `{"rival.com": {"name": "Rival", "strength": "Promos"}}`)

	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
	f.backend.On("GetReport", mock.Anything, "acme").Return(nil, notFound).Twice()
	f.backend.On("GetReport", mock.Anything, "acme").Return(report, nil).Once()

	out := f.orch.DiscoverCompetitors(context.Background(), "acme")

	assert.True(t, out.IsLive())
	assert.NoError(t, out.Err)
	assert.Equal(t, 3, out.Attempts)
	require.Len(t, out.Value, 1)
	assert.Equal(t, "Rival", out.Value[0].Name)
	assert.Equal(t, []time.Duration{3000 * time.Millisecond, 2000 * time.Millisecond, 2000 * time.Millisecond}, f.clock.sleeps)
}

func TestDiscoverCompetitors_ExhaustsTwentyAttempts(t *testing.T) {
	f := setupFixture(t)

	var fetchedAt []time.Duration
	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
	f.backend.On("GetReport", mock.Anything, "acme").
		Run(func(mock.Arguments) { fetchedAt = append(fetchedAt, f.clock.now) }).
		Return(nil, notFound)

	out := f.orch.DiscoverCompetitors(context.Background(), "acme")

	f.backend.AssertNumberOfCalls(t, "GetReport", 20)
	require.Len(t, fetchedAt, 20)
	assert.Equal(t, 3000*time.Millisecond, fetchedAt[0])
	for i := 1; i < len(fetchedAt); i++ {
		assert.GreaterOrEqual(t, fetchedAt[i]-fetchedAt[i-1], 2000*time.Millisecond)
	}

	assert.Equal(t, PollExhausted, out.Degraded)
	assert.Equal(t, 20, out.Attempts)
	assert.ErrorIs(t, out.Err, notFound)
	assert.Equal(t, domain.DemoCompetitors(), out.Value)
	assert.Equal(t, 2000*time.Millisecond, f.clock.sleeps[len(f.clock.sleeps)-1])
}

func TestDiscoverCompetitors_RefreshFailureSkipsPolling(t *testing.T) {
	f := setupFixture(t)
	refreshErr := errors.New("connection refused")

	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(refreshErr).Once()

	out := f.orch.DiscoverCompetitors(context.Background(), "acme")

	f.backend.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything)
	assert.Equal(t, BackendUnavailable, out.Degraded)
	assert.ErrorIs(t, out.Err, refreshErr)
	assert.Len(t, out.Value, 5)
	assert.Equal(t, []time.Duration{2000 * time.Millisecond}, f.clock.sleeps)
}

func TestDiscoverCompetitors_NonTransientErrorAborts(t *testing.T) {
	f := setupFixture(t)

	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
	f.backend.On("GetReport", mock.Anything, "acme").
		Return(nil, &client.APIError{Status: http.StatusInternalServerError, Detail: "Request failed"}).Once()

	out := f.orch.DiscoverCompetitors(context.Background(), "acme")

	assert.Equal(t, ReportError, out.Degraded)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, domain.DemoCompetitors(), out.Value)
}

func TestDiscoverCompetitors_MalformedReportAborts(t *testing.T) {
	f := setupFixture(t)

	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
	f.backend.On("GetReport", mock.Anything, "acme").
		Return(nil, fmt.Errorf("%w: decode GET /reports/acme: invalid character '<'", client.ErrMalformedResponse)).Once()

	out := f.orch.DiscoverCompetitors(context.Background(), "acme")

	assert.Equal(t, ReportError, out.Degraded)
	assert.ErrorIs(t, out.Err, client.ErrMalformedResponse)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, domain.DemoCompetitors(), out.Value)
}

func TestDiscoverCompetitors_EmptyMapKeepsPolling(t *testing.T) {
	f := setupFixture(t)
	empty := reportWithCompetitors(t, `{}`)

	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
	f.backend.On("GetReport", mock.Anything, "acme").Return(empty, nil)

	out := f.orch.DiscoverCompetitors(context.Background(), "acme")

	f.backend.AssertNumberOfCalls(t, "GetReport", 20)
	assert.Equal(t, EmptyReport, out.Degraded)
	assert.NoError(t, out.Err)
	assert.Equal(t, domain.DemoCompetitors(), out.Value)
}

func TestDiscoverCompetitors_CanceledSkipsDemoDelay(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()

	out := f.orch.DiscoverCompetitors(ctx, "acme")

	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.False(t, out.IsLive())
	assert.Empty(t, f.clock.sleeps)
	assert.Len(t, out.Value, 5)
}

func TestBuildAnalysis(t *testing.T) {
	selected := domain.DemoCompetitors()[:3]

	t.Run("live report", func(t *testing.T) {
		f := setupFixture(t)
		report := reportWithCompetitors(t, `{"rival.com": {}}`)

		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
		f.backend.On("GetReport", mock.Anything, "acme").Return(report, nil).Once()

		out := f.orch.BuildAnalysis(context.Background(), "acme", "acme.com", selected)

		assert.True(t, out.IsLive())
		assert.Equal(t, adapters.MapReportToAnalysis(report), out.Value)
		assert.Equal(t, []time.Duration{5000 * time.Millisecond}, f.clock.sleeps)
	})

	t.Run("fallback when report missing", func(t *testing.T) {
		f := setupFixture(t)

		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
		f.backend.On("GetReport", mock.Anything, "acme").Return(nil, notFound).Once()

		out := f.orch.BuildAnalysis(context.Background(), "acme", "acme.com", selected)

		assert.Equal(t, PollExhausted, out.Degraded)
		assert.Equal(t, domain.FallbackAnalysis(selected), out.Value)
		require.Len(t, out.Value.Options, 3)
		for _, c := range out.Value.Competitors {
			require.NotNil(t, c.Traffic)
			assert.Equal(t, "50K+", c.Traffic.MonthlyVisits)
		}
		assert.Equal(t, []time.Duration{5000 * time.Millisecond}, f.clock.sleeps)
	})

	t.Run("fallback when refresh fails", func(t *testing.T) {
		f := setupFixture(t)

		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(client.ErrUnavailable).Once()

		out := f.orch.BuildAnalysis(context.Background(), "acme", "acme.com", selected)

		assert.Equal(t, BackendUnavailable, out.Degraded)
		assert.Equal(t, domain.FallbackAnalysis(selected), out.Value)
		assert.Empty(t, f.clock.sleeps)
	})
}

func TestDiagnoseMeta(t *testing.T) {
	t.Run("insight summary wins", func(t *testing.T) {
		f := setupFixture(t)
		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
		f.backend.On("GetReport", mock.Anything, "acme").Return(reportWithCompetitors(t, `{}`), nil).Once()

		out := f.orch.DiagnoseMeta(context.Background(), "acme")
		assert.Equal(t, "Summary text", out.Value)
		assert.Equal(t, []time.Duration{3500 * time.Millisecond}, f.clock.sleeps)
	})

	t.Run("meta diagnostic next", func(t *testing.T) {
		f := setupFixture(t)
		report := reportWithCompetitors(t, `{}`)
		report.Insight.Summary = ""
		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
		f.backend.On("GetReport", mock.Anything, "acme").Return(report, nil).Once()

		assert.Equal(t, "ROAS trending down", f.orch.DiagnoseMeta(context.Background(), "acme").Value)
	})

	t.Run("canned text", func(t *testing.T) {
		f := setupFixture(t)
		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
		f.backend.On("GetReport", mock.Anything, "acme").Return(&api.ReportSummary{}, nil).Once()

		assert.Equal(t, MetaNoDiagnostic, f.orch.DiagnoseMeta(context.Background(), "acme").Value)
	})

	t.Run("refresh failure", func(t *testing.T) {
		f := setupFixture(t)
		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(client.ErrUnavailable).Once()

		out := f.orch.DiagnoseMeta(context.Background(), "acme")
		assert.Equal(t, MetaRefreshFailed, out.Value)
		assert.Equal(t, BackendUnavailable, out.Degraded)
	})

	t.Run("fetch failure", func(t *testing.T) {
		f := setupFixture(t)
		f.backend.On("RefreshReport", mock.Anything, "acme", true).Return(nil).Once()
		f.backend.On("GetReport", mock.Anything, "acme").Return(nil, notFound).Once()

		out := f.orch.DiagnoseMeta(context.Background(), "acme")
		assert.Equal(t, MetaFetchFailed, out.Value)
		assert.False(t, out.IsLive())
	})
}

func TestPolicy_Jitter(t *testing.T) {
	p := Policy{Interval: time.Second, Jitter: 500 * time.Millisecond}
	for i := 0; i < 50; i++ {
		w := p.wait()
		assert.GreaterOrEqual(t, w, time.Second)
		assert.LessOrEqual(t, w, 1500*time.Millisecond)
	}
}

func TestSleep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), 0))
}
