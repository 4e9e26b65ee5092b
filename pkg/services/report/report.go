package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/services/alert"
	"github.com/metagrowth/growth-agent/pkg/services/compintel"
	"github.com/metagrowth/growth-agent/pkg/services/insight"
	"github.com/metagrowth/growth-agent/pkg/services/metaads"
	"github.com/metagrowth/growth-agent/pkg/store/artifacts"
	"github.com/metagrowth/growth-agent/pkg/store/reports"
	"github.com/rs/zerolog"
)

// LowROASThreshold raises a warning alert when purchase ROAS drops below it
const LowROASThreshold = 1.0

type Service interface {
	Generate(ctx context.Context, accountID, domainName, timeframe string) (*store.ReportRun, error)
	Latest(ctx context.Context, accountID string) (*store.ReportRun, error)
}

type Dependencies struct {
	Meta       metaads.Client
	Competitor compintel.Client
	Insight    insight.Service
	Artifacts  artifacts.Store
	Reports    reports.Store
	// Alerts is optional
	Alerts alert.Service
	Now    func() time.Time
}

type service struct {
	deps Dependencies
}

func NewService(deps Dependencies) (Service, error) {
	switch {
	case deps.Meta == nil:
		return nil, fmt.Errorf("meta ads client is nil")
	case deps.Competitor == nil:
		return nil, fmt.Errorf("competitor intel client is nil")
	case deps.Insight == nil:
		return nil, fmt.Errorf("insight service is nil")
	case deps.Artifacts == nil:
		return nil, fmt.Errorf("artifact store is nil")
	case deps.Reports == nil:
		return nil, fmt.Errorf("report store is nil")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}, nil
}

func (s *service) Generate(ctx context.Context, accountID, domainName, timeframe string) (*store.ReportRun, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}
	if domainName == "" {
		domainName = domain.DefaultDomain
	}
	if timeframe == "" {
		timeframe = domain.DefaultTimeframe
	}
	logger := zerolog.Ctx(ctx).With().Str("account_id", accountID).Str("domain", domainName).Logger()

	meta := s.deps.Meta.FetchAccountOverview(ctx, accountID)
	competitor := s.deps.Competitor.FetchMarketShare(ctx, domainName)
	generated := s.deps.Insight.Generate(ctx, meta, competitor)
	now := s.deps.Now().UTC()

	content, err := RenderArtifact(accountID, timeframe, meta, competitor, generated, now)
	if err != nil {
		return nil, err
	}
	artifactPath, err := s.deps.Artifacts.Put(ctx, accountID, content)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	competitorPayload, err := json.Marshal(competitor)
	if err != nil {
		return nil, fmt.Errorf("marshal competitor payload: %w", err)
	}

	run := &store.ReportRun{
		AccountID:         accountID,
		Timeframe:         timeframe,
		MetaPayload:       meta,
		CompetitorPayload: competitorPayload,
		InsightText:       generated.Text,
		InsightMetadata:   map[string]any{"provider": generated.Provider},
		ArtifactsPath:     &artifactPath,
		CreatedAt:         now,
	}
	if err := s.deps.Reports.Add(ctx, run); err != nil {
		return nil, fmt.Errorf("save report run: %w", err)
	}
	logger.Info().Int64("report_id", run.ID).Str("provider", generated.Provider).Msg("Report generated")

	s.checkROAS(ctx, accountID, meta)
	return run, nil
}

func (s *service) checkROAS(ctx context.Context, accountID string, meta metaads.Overview) {
	if s.deps.Alerts == nil {
		return
	}
	roas, ok := meta.PurchaseROAS()
	if !ok || roas >= LowROASThreshold {
		return
	}

	_, err := s.deps.Alerts.Raise(ctx, domain.Alert{
		AccountID: accountID,
		Type:      domain.AlertLowROAS,
		Severity:  domain.SeverityWarning,
		Message:   fmt.Sprintf("Purchase ROAS %.2f is below %.1f", roas, LowROASThreshold),
		Metadata:  map[string]any{"purchase_roas": roas},
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", accountID).Msg("Failed to raise low ROAS alert")
	}
}

func (s *service) Latest(ctx context.Context, accountID string) (*store.ReportRun, error) {
	return s.deps.Reports.Latest(ctx, accountID)
}
