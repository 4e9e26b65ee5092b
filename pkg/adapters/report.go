package adapters

import (
	"encoding/json"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
)

const defaultInsightProvider = "claude"

// MapStoreReportRunToAPI summarizes a stored run: the first paragraph of the
// insight becomes the summary and every non-blank line a recommendation.
func MapStoreReportRunToAPI(run *store.ReportRun) api.ReportSummary {
	summary, _, _ := strings.Cut(run.InsightText, "\n\n")

	var recommendations []string
	for _, line := range strings.Split(run.InsightText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			recommendations = append(recommendations, line)
		}
	}
	if recommendations == nil {
		recommendations = []string{}
	}

	provider, _ := run.InsightMetadata["provider"].(string)
	if provider == "" {
		provider = defaultInsightProvider
	}

	var competitor api.CompetitorMap
	if len(run.CompetitorPayload) > 0 {
		_ = json.Unmarshal(run.CompetitorPayload, &competitor)
	}

	meta := run.MetaPayload
	if meta == nil {
		meta = map[string]any{}
	}

	return api.ReportSummary{
		AccountID:  run.AccountID,
		Timeframe:  run.Timeframe,
		Meta:       meta,
		Competitor: competitor,
		Insight: api.InsightPayload{
			Summary:         summary,
			Recommendations: recommendations,
			Anomalies:       mapAnomalies(run.InsightMetadata["anomalies"]),
			LLMProvider:     provider,
		},
		ArtifactsPath: run.ArtifactsPath,
		CreatedAt:     run.CreatedAt,
	}
}

func mapAnomalies(v any) []map[string]any {
	anomalies := []map[string]any{}
	switch items := v.(type) {
	case []map[string]any:
		return append(anomalies, items...)
	case []any:
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				anomalies = append(anomalies, m)
			}
		}
	}
	return anomalies
}

func MapStoreAlertToAPI(a store.AlertEvent) api.AlertResponse {
	metadata := a.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return api.AlertResponse{
		ID:        a.ID,
		AccountID: a.AccountID,
		AlertType: a.AlertType,
		Severity:  a.Severity,
		Message:   a.Message,
		Metadata:  metadata,
		CreatedAt: a.CreatedAt,
	}
}

func MapDomainAlertToStore(a domain.Alert) store.AlertEvent {
	return store.AlertEvent{
		AccountID: a.AccountID,
		AlertType: string(a.Type),
		Severity:  string(a.Severity),
		Message:   a.Message,
		Metadata:  a.Metadata,
	}
}

func MapDomainTrafficToAPI(t domain.TrafficData) api.TrafficData {
	return api.TrafficData{
		Domain:        t.Domain,
		MonthlyVisits: t.MonthlyVisits,
		BounceRate:    t.BounceRate,
		AvgDuration:   t.AvgDuration,
		DeviceSplit:   t.DeviceSplit,
		Source:        t.Source,
		RawData:       t.RawData,
	}
}
