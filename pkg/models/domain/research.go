package domain

// ResearchTask is one step of the market research workflow
type ResearchTask string

const (
	TaskCompetitorIdentification ResearchTask = "competitor_identification"
	TaskTrafficAnalysis          ResearchTask = "traffic_analysis"
	TaskMarketGapAnalysis        ResearchTask = "market_gap_analysis"
	TaskGrowthOpportunity        ResearchTask = "growth_opportunity"
	TaskMetaAdsDiagnostic        ResearchTask = "meta_ads_diagnostic"
	TaskStrategicRecommendations ResearchTask = "strategic_recommendations"
	TaskExecutiveSummary         ResearchTask = "executive_summary"
)

// ResearchTasks lists every task in declaration order
var ResearchTasks = []ResearchTask{
	TaskCompetitorIdentification,
	TaskTrafficAnalysis,
	TaskMarketGapAnalysis,
	TaskGrowthOpportunity,
	TaskMetaAdsDiagnostic,
	TaskStrategicRecommendations,
	TaskExecutiveSummary,
}

var ResearchTaskDescriptions = map[ResearchTask]string{
	TaskCompetitorIdentification: "Identify top competitors in the market",
	TaskTrafficAnalysis:          "Analyze website traffic patterns",
	TaskMarketGapAnalysis:        "Identify market gaps and opportunities",
	TaskGrowthOpportunity:        "Find growth opportunities",
	TaskMetaAdsDiagnostic:        "Diagnose Meta Ads performance issues",
	TaskStrategicRecommendations: "Generate strategic recommendations",
	TaskExecutiveSummary:         "Create executive summary",
}

func ParseResearchTask(s string) (ResearchTask, bool) {
	for _, t := range ResearchTasks {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Generation is a single model answer with the provider that produced it
type Generation struct {
	Content  string
	Provider string
	Model    string
	Metadata map[string]any
}

// ResearchReport is the compiled output of a full workflow execution
type ResearchReport struct {
	Domain              string
	ExecutiveSummary    string
	Competitors         string
	TrafficAnalysis     string
	MarketGap           string
	GrowthOpportunities string
	MetaDiagnostic      string
	Recommendations     string
	TrafficData         map[string]TrafficData
	Steps               map[ResearchTask]Generation
}
