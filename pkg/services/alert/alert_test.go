package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Add(ctx context.Context, event *store.AlertEvent) error {
	args := m.Called(ctx, event)
	if args.Error(0) == nil {
		event.ID = 7
	}
	return args.Error(0)
}

func (m *mockStore) List(ctx context.Context, limit int) ([]store.AlertEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]store.AlertEvent)
	return events, args.Error(1)
}

var lowROAS = domain.Alert{
	AccountID: "acme",
	Type:      domain.AlertLowROAS,
	Severity:  domain.SeverityWarning,
	Message:   "ROAS below target",
	Metadata:  map[string]any{"roas": 0.8},
}

func TestService_RaisePostsWebhook(t *testing.T) {
	var got webhookBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	t.Cleanup(srv.Close)

	st := &mockStore{}
	st.On("Add", mock.Anything, mock.AnythingOfType("*store.AlertEvent")).Return(nil).Once()

	svc, err := NewService(st, Config{WebhookURL: srv.URL})
	require.NoError(t, err)

	event, err := svc.Raise(context.Background(), lowROAS)
	require.NoError(t, err)

	assert.Equal(t, int64(7), event.ID)
	assert.Equal(t, "low_roas", event.AlertType)
	assert.Equal(t, "[warning] low_roas for acme", got.Text)
	assert.Equal(t, "ROAS below target", got.Details)
	assert.Equal(t, 0.8, got.Metadata["roas"])
	st.AssertExpectations(t)
}

func TestService_WebhookFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	st := &mockStore{}
	st.On("Add", mock.Anything, mock.Anything).Return(nil)

	t.Run("non-2xx", func(t *testing.T) {
		svc, err := NewService(st, Config{WebhookURL: srv.URL})
		require.NoError(t, err)

		_, err = svc.Raise(context.Background(), lowROAS)
		assert.NoError(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		svc, err := NewService(st, Config{WebhookURL: "http://127.0.0.1:0/hook"})
		require.NoError(t, err)

		_, err = svc.Raise(context.Background(), lowROAS)
		assert.NoError(t, err)
	})
}

func TestService_PersistFailure(t *testing.T) {
	st := &mockStore{}
	st.On("Add", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	svc, err := NewService(st, Config{})
	require.NoError(t, err)

	event, err := svc.Raise(context.Background(), lowROAS)
	assert.ErrorContains(t, err, "persist alert")
	assert.Nil(t, event)
}

func TestService_List(t *testing.T) {
	st := &mockStore{}
	st.On("List", mock.Anything, 50).Return([]store.AlertEvent{{ID: 1}}, nil).Once()

	svc, err := NewService(st, Config{})
	require.NoError(t, err)

	events, err := svc.List(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestNewService_NilStore(t *testing.T) {
	_, err := NewService(nil, Config{})
	assert.Error(t, err)
}
