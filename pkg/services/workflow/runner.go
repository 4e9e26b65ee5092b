package workflow

import (
	"context"
	"time"

	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/alert"
	"github.com/metagrowth/growth-agent/pkg/services/report"
	"github.com/rs/zerolog"
)

// Runner drains the refresh lanes, always taking a priority job first
type Runner struct {
	name      string
	priority  <-chan domain.RefreshJob
	standard  <-chan domain.RefreshJob
	generator report.Service
	alerts    alert.Service
	done      chan struct{}
	progress  chan domain.JobResult
	now       func() time.Time
}

func NewRunner(
	name string,
	priority, standard <-chan domain.RefreshJob,
	generator report.Service,
	alerts alert.Service,
) *Runner {
	return &Runner{
		name:      name,
		priority:  priority,
		standard:  standard,
		generator: generator,
		alerts:    alerts,
		done:      make(chan struct{}),
		progress:  make(chan domain.JobResult, 100),
		now:       time.Now,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress receives one result per handled job. Results are dropped when
// nobody keeps up with the channel.
func (r *Runner) Progress() <-chan domain.JobResult {
	return r.progress
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("runner", r.name).Logger()
	ctx = logger.WithContext(ctx)
	defer close(r.done)
	defer close(r.progress)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh runner stopped")
			return
		case job := <-r.priority:
			r.handle(ctx, job)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh runner stopped")
			return
		case job := <-r.priority:
			r.handle(ctx, job)
		case job := <-r.standard:
			r.handle(ctx, job)
		}
	}
}

func (r *Runner) handle(ctx context.Context, job domain.RefreshJob) {
	logger := zerolog.Ctx(ctx).With().
		Str("job_id", job.ID).
		Str("account_id", job.AccountID).
		Bool("priority", job.Priority).
		Logger()

	result := domain.JobResult{JobID: job.ID, AccountID: job.AccountID}

	run, err := r.generator.Generate(logger.WithContext(ctx), job.AccountID, job.Domain, job.Timeframe)
	switch {
	case err != nil && ctx.Err() != nil:
		result.Status = domain.JobStatusCancelled
	case err != nil:
		logger.Error().Err(err).Msg("Refresh failed")
		msg := err.Error()
		result.Status = domain.JobStatusFailed
		result.Error = &msg
		if r.alerts != nil {
			if _, alertErr := r.alerts.Raise(ctx, adapters.MapFailedJobToAlert(job, err)); alertErr != nil {
				logger.Warn().Err(alertErr).Msg("Failed to record refresh failure")
			}
		}
	default:
		logger.Info().Int64("report_id", run.ID).Msg("Refresh completed")
		result.Status = domain.JobStatusFinished
		result.ReportID = run.ID
	}
	result.FinishedAt = r.now()

	select {
	case r.progress <- result:
	default:
	}
}
