package adapters

import (
	"fmt"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
)

// MapFailedJobToAlert turns a refresh job that errored into a refresh_failed alert
func MapFailedJobToAlert(job domain.RefreshJob, err error) domain.Alert {
	return domain.Alert{
		AccountID: job.AccountID,
		Type:      domain.AlertRefreshFailed,
		Severity:  domain.SeverityCritical,
		Message:   fmt.Sprintf("Report refresh failed: %v", err),
		Metadata: map[string]any{
			"job_id":    job.ID,
			"domain":    job.Domain,
			"timeframe": job.Timeframe,
			"priority":  job.Priority,
		},
	}
}
