package research

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
)

func asJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

type step struct {
	task   domain.ResearchTask
	prompt string
}

func reportSteps(req Request) []step {
	meta, competitor := asJSON(req.MetaData), asJSON(req.CompetitorData)

	return []step{
		{domain.TaskCompetitorIdentification, fmt.Sprintf(`
Analyze the market for %s and identify the top 5 direct competitors.
Focus on brands that compete in Meta Ads auctions.
Provide: name, URL, and key strength for each competitor.
Format as JSON array.
`, req.Domain)},
		{domain.TaskMarketGapAnalysis, fmt.Sprintf(`
Based on this Meta Ads data: %s
And competitor data: %s

Identify the biggest market gap or inefficiency.
What opportunity exists that competitors are missing?
`, meta, competitor)},
		{domain.TaskGrowthOpportunity, fmt.Sprintf(`
For %s, identify 3 high-impact growth opportunities in Meta Ads.
Consider: %s and %s
Provide actionable strategies with projected impact.
`, req.Domain, meta, competitor)},
		{domain.TaskMetaAdsDiagnostic, fmt.Sprintf(`
Analyze this Meta Ads performance data: %s
Identify the top 3 issues or optimization opportunities.
Be specific and data-driven.
`, meta)},
		{domain.TaskStrategicRecommendations, fmt.Sprintf(`
Based on all the analysis above, provide 5 strategic recommendations
for %s to improve Meta Ads performance and capture market share.
Prioritize by impact and feasibility.
`, req.Domain)},
		{domain.TaskExecutiveSummary, fmt.Sprintf(`
Create an executive summary for %s's market research analysis.
Include: key findings, opportunities, and recommended actions.
Keep it concise and actionable.
`, req.Domain)},
	}
}

func trafficStep(target string, data map[string]domain.TrafficData) step {
	domains := make([]string, 0, len(data))
	for d := range data {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var sb strings.Builder
	for _, d := range domains {
		t := data[d]
		fmt.Fprintf(&sb, "- %s: %s visits/mo, bounce %s, avg visit %s, %s\n",
			d, t.MonthlyVisits, t.BounceRate, t.AvgDuration, t.DeviceSplit)
	}

	return step{domain.TaskTrafficAnalysis, fmt.Sprintf(`
Compare the website traffic of %s's competitors:
%s
Which traffic patterns point to weak landing pages or untapped paid social demand?
`, target, sb.String())}
}
