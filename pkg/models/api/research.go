package api

type TrafficData struct {
	Domain        string         `json:"domain"`
	MonthlyVisits string         `json:"monthly_visits"`
	BounceRate    string         `json:"bounce_rate"`
	AvgDuration   string         `json:"avg_duration"`
	DeviceSplit   string         `json:"device_split"`
	Source        string         `json:"source,omitempty"`
	RawData       map[string]any `json:"raw_data,omitempty"`
}

type ProvidersResponse struct {
	Available []string `json:"available"`
}

type TasksResponse struct {
	Tasks        []string          `json:"tasks"`
	Descriptions map[string]string `json:"descriptions"`
}

type WorkflowConfigRequest struct {
	Config map[string]string `json:"config"`
}

type WorkflowConfigResponse struct {
	Status string            `json:"status"`
	Config map[string]string `json:"config"`
}

type WorkflowExecutionRequest struct {
	Domain         string            `json:"domain"`
	MetaData       map[string]any    `json:"meta_data"`
	CompetitorData map[string]any    `json:"competitor_data"`
	CustomConfig   map[string]string `json:"custom_config,omitempty"`
}

type WorkflowResponse struct {
	Domain              string                       `json:"domain"`
	ExecutiveSummary    string                       `json:"executive_summary"`
	Competitors         string                       `json:"competitors"`
	TrafficAnalysis     string                       `json:"traffic_analysis"`
	MarketGap           string                       `json:"market_gap"`
	GrowthOpportunities string                       `json:"growth_opportunities"`
	MetaDiagnostic      string                       `json:"meta_diagnostic"`
	Recommendations     string                       `json:"recommendations"`
	TrafficData         map[string]TrafficData       `json:"traffic_data"`
	WorkflowMetadata    map[string]map[string]string `json:"workflow_metadata"`
}

type TaskExecutionRequest struct {
	Task     string `json:"task"`
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

type TaskExecutionResponse struct {
	Content  string         `json:"content"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Metadata map[string]any `json:"metadata"`
}
