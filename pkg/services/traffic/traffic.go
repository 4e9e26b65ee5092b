package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultHost    = "similar-web-data.p.rapidapi.com"
	DefaultTimeout = 30 * time.Second

	defaultRate        = 5
	defaultConcurrency = 4
)

// endpoints are tried in order until one answers 200
var endpoints = []string{"/traffic", "/domain-traffic", "/website-traffic", "/v1/traffic"}

type Service interface {
	Lookup(ctx context.Context, domain string) domain.TrafficData
	// Batch looks up every domain concurrently. Results are keyed by the
	// domains as given.
	Batch(ctx context.Context, domains []string) map[string]domain.TrafficData
}

type Config struct {
	APIKey string
	Host   string
	// BaseURL overrides https://<Host>
	BaseURL     string
	HTTPClient  *http.Client
	RateLimit   rate.Limit
	Concurrency int
}

type service struct {
	cfg     Config
	limiter *rate.Limiter
}

func NewService(cfg Config) Service {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRate
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	burst := 1
	if cfg.RateLimit != rate.Inf && cfg.RateLimit > 1 {
		burst = int(cfg.RateLimit)
	}

	return &service{
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.RateLimit, burst),
	}
}

// CleanDomain strips scheme, leading www. and any path
func CleanDomain(d string) string {
	d = strings.ReplaceAll(d, "https://", "")
	d = strings.ReplaceAll(d, "http://", "")
	d = strings.ReplaceAll(d, "www.", "")
	d, _, _ = strings.Cut(d, "/")
	return d
}

func (s *service) Lookup(ctx context.Context, rawDomain string) domain.TrafficData {
	clean := CleanDomain(rawDomain)
	logger := zerolog.Ctx(ctx).With().Str("domain", clean).Logger()

	if s.cfg.APIKey == "" {
		return Fallback(clean)
	}

	for _, path := range endpoints {
		data, err := s.fetch(ctx, path, clean)
		if err != nil {
			logger.Debug().Err(err).Str("endpoint", path).Msg("Traffic endpoint failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return Normalize(data, clean)
	}

	logger.Info().Msg("All traffic endpoints failed, using fallback data")
	return Fallback(clean)
}

func (s *service) fetch(ctx context.Context, path, clean string) (map[string]any, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := s.cfg.BaseURL + path + "?" + url.Values{"domain": {clean}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", s.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", s.cfg.Host)

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data, nil
}

func (s *service) Batch(ctx context.Context, domains []string) map[string]domain.TrafficData {
	var mu sync.Mutex
	results := make(map[string]domain.TrafficData, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, d := range domains {
		g.Go(func() error {
			data := s.Lookup(gctx, d)
			mu.Lock()
			results[d] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Normalize maps the differing payload shapes of traffic APIs onto
// TrafficData. The payload is kept as RawData.
func Normalize(data map[string]any, clean string) domain.TrafficData {
	out := domain.TrafficData{
		Domain:        clean,
		MonthlyVisits: "N/A",
		BounceRate:    "N/A",
		AvgDuration:   "N/A",
		DeviceSplit:   "N/A",
		Source:        domain.TrafficSourceAPI,
		RawData:       data,
	}

	if v := first(data, "monthly_visits", "visits", "traffic", "estimated_visits"); v != nil {
		out.MonthlyVisits = text(v)
	}

	switch v := first(data, "bounce_rate", "bounceRate", "bounce").(type) {
	case float64:
		out.BounceRate = fmt.Sprintf("%.1f%%", v*100)
	case nil:
	default:
		out.BounceRate = text(v)
	}

	switch v := first(data, "avg_duration", "avgDuration", "avg_visit_duration", "time_on_site").(type) {
	case float64:
		out.AvgDuration = fmt.Sprintf("%dm %ds", int(v/60), int(math.Mod(v, 60)))
	case nil:
	default:
		out.AvgDuration = text(v)
	}

	switch v := first(data, "device_split", "deviceSplit", "mobile_percentage").(type) {
	case float64:
		out.DeviceSplit = strconv.FormatFloat(v, 'f', -1, 64) + "% Mobile"
	case nil:
	default:
		out.DeviceSplit = text(v)
	}

	return out
}

// Fallback derives a stable, plausible profile from the domain name length
func Fallback(clean string) domain.TrafficData {
	seed := len(clean)
	visits := 50000 + seed*12000

	return domain.TrafficData{
		Domain:        clean,
		MonthlyVisits: fmt.Sprintf("%.1fK", float64(visits)/1000),
		BounceRate:    fmt.Sprintf("%.1f%%", float64(40+seed%20)),
		AvgDuration:   fmt.Sprintf("%dm %ds", 2+seed%3, (seed*4)%60),
		DeviceSplit:   fmt.Sprintf("%d%% Mobile", 50+seed%30),
		Source:        domain.TrafficSourceFallback,
	}
}

// first returns the first value under keys that is not empty, zero or false
func first(data map[string]any, keys ...string) any {
	for _, k := range keys {
		switch v := data[k].(type) {
		case nil:
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return v
			}
		case bool:
			if v {
				return v
			}
		case []any:
			if len(v) > 0 {
				return v
			}
		case map[string]any:
			if len(v) > 0 {
				return v
			}
		}
	}
	return nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
