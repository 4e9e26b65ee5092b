package adapters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
)

const (
	maxProjectedImpact = 100
	na                 = "N/A"
)

// MapReportToCompetitors turns the competitor object of a report into the
// offered competitor list, in document order. Missing fields fall back to
// the entry key.
func MapReportToCompetitors(r *api.ReportSummary) []domain.Competitor {
	if r == nil {
		return []domain.Competitor{}
	}

	competitors := make([]domain.Competitor, 0, r.Competitor.Len())
	for _, entry := range r.Competitor {
		obj := entry.Object()
		c := domain.Competitor{
			Name:     firstNonEmpty(truthy(obj["name"]), entry.Key),
			URL:      firstNonEmpty(truthy(obj["url"]), entry.Key),
			Strength: firstNonEmpty(truthy(obj["strength"]), "Analysis pending"),
		}
		if traffic, ok := obj["traffic"].(map[string]any); ok {
			c.Traffic = &domain.TrafficMetrics{
				MonthlyVisits: firstNonEmpty(truthy(traffic["monthlyVisits"]), na),
				BounceRate:    firstNonEmpty(truthy(traffic["bounceRate"]), na),
				AvgDuration:   firstNonEmpty(truthy(traffic["avgDuration"]), na),
				DeviceSplit:   firstNonEmpty(truthy(traffic["deviceSplit"]), na),
			}
		}
		competitors = append(competitors, c)
	}
	return competitors
}

// MapRecommendationsToOptions splits each recommendation at its first colon
// into label and hypothesis. Impact starts at 75 and grows by 5 per option.
func MapRecommendationsToOptions(recommendations []string) []domain.GrowthOption {
	options := make([]domain.GrowthOption, 0, len(recommendations))
	for _, rec := range recommendations {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		idx := len(options)

		label, hypothesis, found := strings.Cut(rec, ":")
		label = strings.TrimSpace(label)
		hypothesis = strings.TrimSpace(hypothesis)
		if label == "" {
			label = "Growth Strategy"
		}
		if !found || hypothesis == "" {
			hypothesis = rec
		}

		options = append(options, domain.GrowthOption{
			ID:              fmt.Sprintf("opt-%d", idx),
			Label:           label,
			Hypothesis:      hypothesis,
			ProjectedImpact: min(75+idx*5, maxProjectedImpact),
			Requirements:    []string{"Meta Ads Account", "Campaign Access"},
		})
	}
	return options
}

// MapReportToAnalysis builds the dashboard from a backend report. Every
// field has a default so the result is always complete.
func MapReportToAnalysis(r *api.ReportSummary) domain.AnalysisResult {
	if r == nil {
		r = &api.ReportSummary{}
	}

	competitors := MapReportToCompetitors(r)
	if len(competitors) == 0 {
		competitors = []domain.Competitor{
			{Name: "Market Leader", URL: "competitor.com", Strength: "High frequency ads"},
		}
	}

	options := MapRecommendationsToOptions(r.Insight.Recommendations)
	if len(options) == 0 {
		options = []domain.GrowthOption{
			{
				ID:              "opt-1",
				Label:           "Optimize Creative Strategy",
				Hypothesis:      "Implement high-velocity video creatives to reduce bounce rate",
				ProjectedImpact: 85,
				Requirements:    []string{"Video Assets", "A/B Testing"},
			},
		}
	}

	return domain.AnalysisResult{
		ExecutiveSummary: firstNonEmpty(r.Insight.Summary, "Analysis complete."),
		Competitors:      competitors,
		GrossOpportunity: firstNonEmpty(truthy(r.Meta["grossOpportunity"]), "$10k - $50k / mo"),
		MarketGap:        firstNonEmpty(truthy(r.Meta["marketGap"]), "High CPM detected"),
		Options:          options,
		MetaDiagnostic:   firstNonEmpty(truthy(r.Meta["diagnostic"]), r.Insight.Summary, "Connection pending"),
	}
}

// MetaDiagnostic returns the diagnostic text the backend attached to the
// Meta payload, or "".
func MetaDiagnostic(meta map[string]any) string {
	return truthy(meta["diagnostic"])
}

// truthy renders scalar JSON values as text and returns "" for anything
// empty, zero or structured.
func truthy(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
