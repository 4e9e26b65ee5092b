package metaads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) Client {
	return NewClient(Config{
		Token:           "tok",
		BaseURL:         srv.URL,
		HTTPClient:      srv.Client(),
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})
}

func TestFetchAccountOverview_FirstRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/act_123/insights", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "spend,impressions,clicks,actions,cpc,cpm,ctr,purchase_roas", r.URL.Query().Get("fields"))

		var tr TimeRange
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("time_range")), &tr))
		assert.Equal(t, DefaultTimeRange, tr)

		_, _ = fmt.Fprint(w, `{"data":[{"spend":"100","purchase_roas":[{"action_type":"omni_purchase","value":"0.8"}]},{"spend":"1"}]}`)
	}))
	defer srv.Close()

	overview := newTestClient(srv).FetchAccountOverview(context.Background(), "123")
	assert.Equal(t, "100", overview["spend"])

	roas, ok := overview.PurchaseROAS()
	require.True(t, ok)
	assert.InDelta(t, 0.8, roas, 1e-9)
}

func TestFetchAccountOverview_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{"spend":5}`)
	}))
	defer srv.Close()

	overview := newTestClient(srv).FetchAccountOverview(context.Background(), "123")
	assert.Equal(t, 5.0, overview["spend"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchAccountOverview_FallbackAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	overview := newTestClient(srv).FetchAccountOverview(context.Background(), "123")
	assert.Equal(t, FallbackOverview(), overview)
	assert.Equal(t, int32(maxAttempts), calls.Load())

	roas, ok := overview.PurchaseROAS()
	require.True(t, ok)
	assert.Equal(t, 4.5, roas)
}

func TestPurchaseROAS(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{name: "number", in: 2.5, want: 2.5, ok: true},
		{name: "string", in: "0.5", want: 0.5, ok: true},
		{name: "missing", in: nil},
		{name: "empty list", in: []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Overview{"purchase_roas": tt.in}.PurchaseROAS()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
