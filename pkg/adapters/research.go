package adapters

import (
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
)

func MapResearchReportToAPI(r *domain.ResearchReport) api.WorkflowResponse {
	traffic := make(map[string]api.TrafficData, len(r.TrafficData))
	for d, t := range r.TrafficData {
		traffic[d] = MapDomainTrafficToAPI(t)
	}

	metadata := make(map[string]map[string]string, len(r.Steps))
	for task, gen := range r.Steps {
		metadata[string(task)] = map[string]string{
			"provider": gen.Provider,
			"model":    gen.Model,
		}
	}

	return api.WorkflowResponse{
		Domain:              r.Domain,
		ExecutiveSummary:    r.ExecutiveSummary,
		Competitors:         r.Competitors,
		TrafficAnalysis:     r.TrafficAnalysis,
		MarketGap:           r.MarketGap,
		GrowthOpportunities: r.GrowthOpportunities,
		MetaDiagnostic:      r.MetaDiagnostic,
		Recommendations:     r.Recommendations,
		TrafficData:         traffic,
		WorkflowMetadata:    metadata,
	}
}

func MapGenerationToAPI(g domain.Generation) api.TaskExecutionResponse {
	metadata := g.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return api.TaskExecutionResponse{
		Content:  g.Content,
		Provider: g.Provider,
		Model:    g.Model,
		Metadata: metadata,
	}
}
