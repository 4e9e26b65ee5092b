package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) List(ctx context.Context, limit int) ([]store.AlertEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]store.AlertEvent)
	return events, args.Error(1)
}

func TestListAlerts(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("newest first from store", func(t *testing.T) {
		lister := new(mockLister)
		lister.On("List", mock.Anything, 50).Return([]store.AlertEvent{
			{ID: 2, AccountID: "acme", AlertType: "low_roas", Severity: "warning", Message: "ROAS below 1", CreatedAt: at},
			{ID: 1, AccountID: "acme", AlertType: "refresh_failed", Severity: "critical", Message: "boom", Metadata: map[string]any{"job_id": "j"}, CreatedAt: at},
		}, nil)

		rec := httptest.NewRecorder()
		NewHandler(lister).ListAlerts(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var out []api.AlertResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		require.Len(t, out, 2)
		assert.Equal(t, int64(2), out[0].ID)
		assert.Equal(t, map[string]any{}, out[0].Metadata)
		assert.Equal(t, "j", out[1].Metadata["job_id"])
		lister.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		lister := new(mockLister)
		lister.On("List", mock.Anything, 50).Return([]store.AlertEvent{}, nil)

		rec := httptest.NewRecorder()
		NewHandler(lister).ListAlerts(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		lister := new(mockLister)
		lister.On("List", mock.Anything, 50).Return(nil, errors.New("locked"))

		rec := httptest.NewRecorder()
		NewHandler(lister).ListAlerts(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
