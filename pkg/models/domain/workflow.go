package domain

import "time"

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusFinished  JobStatus = "finished"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobResult is what a runner reports after handling one refresh job
type JobResult struct {
	JobID      string
	AccountID  string
	Status     JobStatus
	ReportID   int64
	Error      *string
	FinishedAt time.Time
}
