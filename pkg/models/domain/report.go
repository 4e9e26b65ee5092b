package domain

import "time"

const (
	DefaultTimeframe = "last_7d"
	DefaultDomain    = "example.com"
)

// RefreshJob asks for a new report run for one account
type RefreshJob struct {
	ID         string
	AccountID  string
	Domain     string
	Timeframe  string
	Priority   bool
	EnqueuedAt time.Time
}

// Insight is the generated narrative for a report run
type Insight struct {
	Text     string
	Provider string
}

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type AlertType string

const (
	AlertRefreshFailed AlertType = "refresh_failed"
	AlertLowROAS       AlertType = "low_roas"
)

// Alert is an operational event raised while producing reports
type Alert struct {
	AccountID string
	Type      AlertType
	Severity  AlertSeverity
	Message   string
	Metadata  map[string]any
}
