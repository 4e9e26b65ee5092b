package store

import (
	"encoding/json"
	"time"
)

type ReportRun struct {
	ID                int64
	AccountID         string
	Timeframe         string
	MetaPayload       map[string]any
	CompetitorPayload json.RawMessage
	InsightText       string
	InsightMetadata   map[string]any
	ArtifactsPath     *string
	CreatedAt         time.Time
}

type AlertEvent struct {
	ID        int64
	AccountID string
	AlertType string
	Severity  string
	Message   string
	Metadata  map[string]any
	CreatedAt time.Time
}
