package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/store/alerts"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 10 * time.Second

// Service records alerts and forwards them to the configured webhook
type Service interface {
	Raise(ctx context.Context, alert domain.Alert) (*store.AlertEvent, error)
	List(ctx context.Context, limit int) ([]store.AlertEvent, error)
}

type Config struct {
	WebhookURL string
	HTTPClient *http.Client
}

type service struct {
	store alerts.Store
	cfg   Config
}

func NewService(st alerts.Store, cfg Config) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("alert store is nil")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &service{store: st, cfg: cfg}, nil
}

type webhookBody struct {
	Text     string         `json:"text"`
	Details  string         `json:"details"`
	Metadata map[string]any `json:"metadata"`
}

func (s *service) Raise(ctx context.Context, alert domain.Alert) (*store.AlertEvent, error) {
	event := adapters.MapDomainAlertToStore(alert)
	if err := s.store.Add(ctx, &event); err != nil {
		return nil, fmt.Errorf("persist alert: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", event.AccountID).
		Str("alert_type", event.AlertType).
		Str("severity", event.Severity).
		Msg("Alert raised")

	s.notify(ctx, &event)
	return &event, nil
}

func (s *service) List(ctx context.Context, limit int) ([]store.AlertEvent, error) {
	return s.store.List(ctx, limit)
}

// notify never fails the caller: a broken webhook only costs a log line
func (s *service) notify(ctx context.Context, event *store.AlertEvent) {
	if s.cfg.WebhookURL == "" {
		return
	}
	logger := zerolog.Ctx(ctx)

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	body, err := json.Marshal(webhookBody{
		Text:     fmt.Sprintf("[%s] %s for %s", event.Severity, event.AlertType, event.AccountID),
		Details:  event.Message,
		Metadata: metadata,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode alert webhook")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to build alert webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Alert webhook unreachable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		logger.Warn().Int("status", resp.StatusCode).Msg("Alert webhook rejected")
	}
}
