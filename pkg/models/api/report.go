package api

import "time"

type InsightPayload struct {
	Summary         string           `json:"summary"`
	Recommendations []string         `json:"recommendations"`
	Anomalies       []map[string]any `json:"anomalies"`
	LLMProvider     string           `json:"llm_provider"`
}

type ReportSummary struct {
	AccountID     string         `json:"account_id"`
	Timeframe     string         `json:"timeframe"`
	Meta          map[string]any `json:"meta"`
	Competitor    CompetitorMap  `json:"competitor"`
	Insight       InsightPayload `json:"insight"`
	ArtifactsPath *string        `json:"artifacts_path,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type ReportResponse struct {
	Report ReportSummary `json:"report"`
}

type RefreshRequest struct {
	Priority bool `json:"priority"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AlertResponse struct {
	ID        int64          `json:"id"`
	AccountID string         `json:"account_id"`
	AlertType string         `json:"alert_type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}
