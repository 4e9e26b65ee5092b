package compintel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchMarketShare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market-share", r.URL.Path)
		assert.Equal(t, "rival.com", r.URL.Query().Get("domain"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = fmt.Fprint(w, `{"domain":"rival.com","traffic_share":0.4}`)
	}))
	defer srv.Close()

	share := NewClient(Config{APIKey: "key", BaseURL: srv.URL}).FetchMarketShare(context.Background(), "rival.com")
	assert.Equal(t, 0.4, share["traffic_share"])
}

func TestFetchMarketShare_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	share := NewClient(Config{BaseURL: srv.URL}).FetchMarketShare(context.Background(), "rival.com")
	assert.Equal(t, FallbackMarketShare("rival.com"), share)
}
