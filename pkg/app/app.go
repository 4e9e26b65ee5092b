package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/metagrowth/growth-agent/pkg/services/alert"
	"github.com/metagrowth/growth-agent/pkg/services/compintel"
	"github.com/metagrowth/growth-agent/pkg/services/config"
	"github.com/metagrowth/growth-agent/pkg/services/insight"
	"github.com/metagrowth/growth-agent/pkg/services/metaads"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/metagrowth/growth-agent/pkg/services/report"
	"github.com/metagrowth/growth-agent/pkg/services/research"
	"github.com/metagrowth/growth-agent/pkg/services/traffic"
	"github.com/metagrowth/growth-agent/pkg/services/voice"
	"github.com/metagrowth/growth-agent/pkg/services/workflow"
	"github.com/metagrowth/growth-agent/pkg/store/alerts"
	"github.com/metagrowth/growth-agent/pkg/store/artifacts"
	"github.com/metagrowth/growth-agent/pkg/store/reports"
	"github.com/metagrowth/growth-agent/pkg/store/sqlite"
	"github.com/rs/zerolog"
)

// App holds the backend services built from one set of Settings
type App struct {
	Settings *config.Settings
	DB       *sql.DB

	Reports   reports.Store
	Alerts    alerts.Store
	Notifier  alert.Service
	Providers providers.Registry
	Traffic   traffic.Service
	Research  research.Service
	Voice     voice.Service
	Generator report.Service
}

func New(ctx context.Context, settings *config.Settings) (*App, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings are nil")
	}
	logger := zerolog.Ctx(ctx)

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: settings.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{Settings: settings, DB: db}
	if err := a.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().
		Str("database", settings.DatabaseURL).
		Strs("providers", a.Providers.Available()).
		Bool("voice", a.Voice.Configured()).
		Msg("Backend services initialized")
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	s := a.Settings

	var err error
	if a.Reports, err = reports.NewStore(a.DB); err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}
	if a.Alerts, err = alerts.NewStore(a.DB); err != nil {
		return fmt.Errorf("failed to create alert store: %w", err)
	}
	if a.Notifier, err = alert.NewService(a.Alerts, alert.Config{WebhookURL: s.AlertWebhookURL}); err != nil {
		return fmt.Errorf("failed to create alert service: %w", err)
	}

	a.Providers = providers.NewDefaultRegistry(providers.Config{
		AnthropicAPIKey: s.AnthropicAPIKey,
		ClaudeModel:     s.ClaudeModel,
		GoogleAPIKey:    s.GoogleAPIKey,
		GeminiModel:     s.GeminiModel,
	})
	a.Traffic = traffic.NewService(traffic.Config{APIKey: s.RapidAPIKey, Host: s.RapidAPIHost})
	a.Research = research.NewService(a.Providers, a.Traffic)
	a.Voice = voice.NewService(voice.Config{APIKey: s.DeepgramAPIKey}, a.Providers)

	store, err := artifacts.New(ctx, s.ReportBucketPath, artifacts.Options{})
	if err != nil {
		return fmt.Errorf("failed to create artifact store: %w", err)
	}

	a.Generator, err = report.NewService(report.Dependencies{
		Meta:       metaads.NewClient(metaads.Config{Token: s.MetaAdsToken, BaseURL: s.MetaAPIBaseURL}),
		Competitor: compintel.NewClient(compintel.Config{APIKey: s.CompIntelAPIKey, BaseURL: s.CompIntelBaseURL}),
		Insight:    insight.NewService(a.Providers, s.LLMProvider),
		Artifacts:  store,
		Reports:    a.Reports,
		Alerts:     a.Notifier,
	})
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}
	return nil
}

// NewController builds the refresh queue with the configured hourly schedule
func (a *App) NewController() (*workflow.DefaultController, error) {
	cfg := workflow.DefaultConfig()
	if a.Settings.RefreshWorkers > 0 {
		cfg.Workers = a.Settings.RefreshWorkers
	}
	if a.Settings.RefreshAccountID != "" {
		cfg.Schedules = []workflow.Schedule{{
			Name:      "refresh-default-account",
			AccountID: a.Settings.RefreshAccountID,
			Domain:    a.Settings.RefreshDomain,
			Timeframe: "last_7d",
		}}
	}
	return workflow.NewController(a.Generator, a.Notifier, cfg)
}

func (a *App) Close() error {
	return a.DB.Close()
}
