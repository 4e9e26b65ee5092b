package workflow

import (
	"context"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Schedule is a refresh submitted at the top of every hour
type Schedule struct {
	Name      string
	AccountID string
	Domain    string
	Timeframe string
}

func DefaultSchedules() []Schedule {
	return []Schedule{
		{
			Name:      "refresh-default-account",
			AccountID: "123456789",
			Domain:    domain.DefaultDomain,
		},
	}
}

// NextHour returns the first top of the hour strictly after t
func NextHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}

func (ctrl *DefaultController) schedule(ctx context.Context) {
	defer ctrl.wg.Done()
	logger := zerolog.Ctx(ctx).With().Str("component", "scheduler").Logger()

	for {
		now := ctrl.config.Now()
		wait := NextHour(now).Sub(now)

		select {
		case <-ctx.Done():
			return
		case <-ctrl.config.After(wait):
		}

		for _, s := range ctrl.config.Schedules {
			job, err := ctrl.Submit(ctx, domain.RefreshJob{
				AccountID: s.AccountID,
				Domain:    s.Domain,
				Timeframe: s.Timeframe,
			})
			if err != nil {
				logger.Error().Err(err).Str("schedule", s.Name).Msg("Failed to submit scheduled refresh")
				continue
			}
			logger.Debug().Str("schedule", s.Name).Str("job_id", job.ID).Msg("Scheduled refresh submitted")
		}
	}
}
