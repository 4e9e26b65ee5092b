package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/services/workflow"
	reportstore "github.com/metagrowth/growth-agent/pkg/store/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Latest(ctx context.Context, accountID string) (*store.ReportRun, error) {
	args := m.Called(ctx, accountID)
	run, _ := args.Get(0).(*store.ReportRun)
	return run, args.Error(1)
}

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Enqueue(ctx context.Context, accountID string, priority bool) (domain.RefreshJob, error) {
	args := m.Called(ctx, accountID, priority)
	return args.Get(0).(domain.RefreshJob), args.Error(1)
}

func withAccount(req *http.Request, accountID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("accountId", accountID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetReport(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		setupMock      func(*mockReader)
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name: "latest run",
			setupMock: func(m *mockReader) {
				m.On("Latest", mock.Anything, "acme").Return(&store.ReportRun{
					ID:                7,
					AccountID:         "acme",
					Timeframe:         "last_7d",
					MetaPayload:       map[string]any{"spend": 10.0},
					CompetitorPayload: json.RawMessage(`{"rival.com":{"share":0.4}}`),
					InsightText:       "Summary\n\nDo more video",
					InsightMetadata:   map[string]any{"provider": "gemini"},
					CreatedAt:         createdAt,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp api.ReportResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "acme", resp.Report.AccountID)
				assert.Equal(t, "Summary", resp.Report.Insight.Summary)
				assert.Equal(t, []string{"Summary", "Do more video"}, resp.Report.Insight.Recommendations)
				assert.Equal(t, "gemini", resp.Report.Insight.LLMProvider)
				assert.Equal(t, 1, resp.Report.Competitor.Len())
				assert.True(t, createdAt.Equal(resp.Report.CreatedAt))
			},
		},
		{
			name: "no run yet",
			setupMock: func(m *mockReader) {
				m.On("Latest", mock.Anything, "acme").Return(nil, reportstore.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"detail":"Report not found"}`, string(body))
			},
		},
		{
			name: "store failure",
			setupMock: func(m *mockReader) {
				m.On("Latest", mock.Anything, "acme").Return(nil, errors.New("disk I/O error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(mockReader)
			tt.setupMock(reader)
			h := NewHandler(reader, new(mockScheduler))

			req := withAccount(httptest.NewRequest(http.MethodGet, "/reports/acme", nil), "acme")
			rec := httptest.NewRecorder()

			h.GetReport(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
			reader.AssertExpectations(t)
		})
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mockScheduler)
		expectedStatus int
	}{
		{
			name: "priority refresh",
			body: `{"priority":true}`,
			setupMock: func(m *mockScheduler) {
				m.On("Enqueue", mock.Anything, "acme", true).Return(domain.RefreshJob{ID: "job-1"}, nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "empty body is a standard refresh",
			body: ``,
			setupMock: func(m *mockScheduler) {
				m.On("Enqueue", mock.Anything, "acme", false).Return(domain.RefreshJob{ID: "job-2"}, nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "malformed body",
			body:           `{"priority":`,
			setupMock:      func(m *mockScheduler) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "queue full",
			body: `{}`,
			setupMock: func(m *mockScheduler) {
				m.On("Enqueue", mock.Anything, "acme", false).Return(domain.RefreshJob{}, workflow.ErrQueueFull)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := new(mockScheduler)
			tt.setupMock(scheduler)
			h := NewHandler(new(mockReader), scheduler)

			req := withAccount(httptest.NewRequest(http.MethodPost, "/reports/acme/refresh", strings.NewReader(tt.body)), "acme")
			rec := httptest.NewRecorder()

			h.Refresh(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusAccepted {
				assert.JSONEq(t, `{"status":"scheduled"}`, rec.Body.String())
			}
			scheduler.AssertExpectations(t)
		})
	}
}
