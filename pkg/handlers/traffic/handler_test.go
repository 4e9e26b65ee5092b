package traffic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTraffic struct {
	mock.Mock
}

func (m *mockTraffic) Lookup(ctx context.Context, d string) domain.TrafficData {
	return m.Called(ctx, d).Get(0).(domain.TrafficData)
}

func (m *mockTraffic) Batch(ctx context.Context, domains []string) map[string]domain.TrafficData {
	return m.Called(ctx, domains).Get(0).(map[string]domain.TrafficData)
}

func TestGetTraffic(t *testing.T) {
	svc := new(mockTraffic)
	svc.On("Lookup", mock.Anything, "rival.com").Return(domain.TrafficData{
		Domain:        "rival.com",
		MonthlyVisits: "1.2M",
		BounceRate:    "40%",
		AvgDuration:   "2:10",
		DeviceSplit:   "70% mobile",
		Source:        "similarweb",
	})

	req := httptest.NewRequest(http.MethodGet, "/traffic/rival.com", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("domain", "rival.com")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	NewHandler(svc).GetTraffic(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out api.TrafficData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "1.2M", out.MonthlyVisits)
	assert.Equal(t, "similarweb", out.Source)
	svc.AssertExpectations(t)
}

func TestBatch(t *testing.T) {
	t.Run("keyed by domain", func(t *testing.T) {
		svc := new(mockTraffic)
		svc.On("Batch", mock.Anything, []string{"a.com", "b.com"}).Return(map[string]domain.TrafficData{
			"a.com": {Domain: "a.com", MonthlyVisits: "10K"},
			"b.com": {Domain: "b.com", MonthlyVisits: "20K"},
		})

		rec := httptest.NewRecorder()
		NewHandler(svc).Batch(rec, httptest.NewRequest(http.MethodPost, "/traffic/batch", strings.NewReader(`["a.com","b.com"]`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		var out map[string]api.TrafficData
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Len(t, out, 2)
		assert.Equal(t, "20K", out["b.com"].MonthlyVisits)
	})

	t.Run("body must be an array", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(new(mockTraffic)).Batch(rec, httptest.NewRequest(http.MethodPost, "/traffic/batch", strings.NewReader(`{"domain":"a.com"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
