package orchestrator

import (
	"context"
	"errors"

	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/client"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	MetaRefreshFailed = "Meta Ads diagnostic: Connection pending. Please ensure your Meta Ads account is properly configured."
	MetaFetchFailed   = "Meta Ads diagnostic: Connect your Ad Account for detailed campaign analysis and optimization recommendations."
	MetaNoDiagnostic  = "Meta Ads diagnostic: Campaign optimization opportunities identified."
)

// Backend is the slice of the report API the orchestrator drives
type Backend interface {
	RefreshReport(ctx context.Context, accountID string, priority bool) error
	GetReport(ctx context.Context, accountID string) (*api.ReportSummary, error)
}

type DegradedReason string

const (
	Live               DegradedReason = ""
	BackendUnavailable DegradedReason = "backend_unavailable"
	PollExhausted      DegradedReason = "poll_exhausted"
	ReportError        DegradedReason = "report_error"
	EmptyReport        DegradedReason = "empty_report"
)

// Outcome always carries a usable Value. Degraded tells whether it came
// from the backend or from canned data, Err holds the last error seen.
type Outcome[T any] struct {
	Value    T
	Degraded DegradedReason
	Err      error
	Attempts int
}

func (o Outcome[T]) IsLive() bool {
	return o.Degraded == Live
}

// Analyzer runs the two analysis passes of a session
type Analyzer interface {
	DiscoverCompetitors(ctx context.Context, accountID string) Outcome[[]domain.Competitor]
	BuildAnalysis(ctx context.Context, accountID, url string, selected []domain.Competitor) Outcome[domain.AnalysisResult]
}

type Options struct {
	Initial    Policy
	Deep       Policy
	Diagnostic Policy
	Sleep      Sleeper
}

type Orchestrator struct {
	backend Backend
	opts    Options
}

func New(backend Backend, opts Options) *Orchestrator {
	if opts.Initial.Attempts == 0 {
		opts.Initial = InitialPolicy()
	}
	if opts.Deep.Attempts == 0 {
		opts.Deep = DeepPolicy()
	}
	if opts.Diagnostic.Attempts == 0 {
		opts.Diagnostic = DiagnosticPolicy()
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	return &Orchestrator{backend: backend, opts: opts}
}

type pollResult struct {
	report   *api.ReportSummary
	reason   DegradedReason
	err      error
	attempts int
}

// poll triggers a priority refresh and fetches the report until ready
// accepts it or the policy runs out.
func (o *Orchestrator) poll(ctx context.Context, accountID string, policy Policy, ready func(*api.ReportSummary) bool) pollResult {
	logger := zerolog.Ctx(ctx).With().Str("account_id", accountID).Logger()

	if err := o.backend.RefreshReport(ctx, accountID, true); err != nil {
		logger.Warn().Err(err).Msg("Report refresh failed")
		return pollResult{reason: BackendUnavailable, err: err}
	}

	if err := o.opts.Sleep(ctx, policy.SettleDelay); err != nil {
		return pollResult{reason: PollExhausted, err: err}
	}

	result := pollResult{reason: PollExhausted}
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		result.attempts = attempt

		report, err := o.backend.GetReport(ctx, accountID)
		switch {
		case err == nil && ready(report):
			return pollResult{report: report, attempts: attempt}
		case err == nil:
			logger.Debug().Int("attempt", attempt).Msg("Report has no competitor data yet")
			result.reason = EmptyReport
			result.err = nil
		case client.IsNotReady(err):
			logger.Debug().Err(err).Int("attempt", attempt).Msg("Report not ready")
			result.reason = PollExhausted
			result.err = err
		default:
			logger.Warn().Err(err).Int("attempt", attempt).Msg("Report fetch failed, giving up")
			result.reason = ReportError
			result.err = err
			return result
		}

		if attempt == policy.Attempts {
			break
		}
		if err := o.opts.Sleep(ctx, policy.wait()); err != nil {
			result.err = err
			return result
		}
	}
	return result
}

func (o *Orchestrator) DiscoverCompetitors(ctx context.Context, accountID string) Outcome[[]domain.Competitor] {
	res := o.poll(ctx, accountID, o.opts.Initial, func(r *api.ReportSummary) bool {
		return r != nil && r.Competitor.Len() > 0
	})
	if res.reason == Live {
		return Outcome[[]domain.Competitor]{
			Value:    adapters.MapReportToCompetitors(res.report),
			Attempts: res.attempts,
		}
	}

	zerolog.Ctx(ctx).Warn().
		Str("account_id", accountID).
		Str("reason", string(res.reason)).
		Int("attempts", res.attempts).
		Msg("Competitor discovery degraded to demo data")

	if !errors.Is(res.err, context.Canceled) && !errors.Is(res.err, context.DeadlineExceeded) {
		_ = o.opts.Sleep(ctx, o.opts.Initial.DemoDelay)
	}
	return Outcome[[]domain.Competitor]{
		Value:    domain.DemoCompetitors(),
		Degraded: res.reason,
		Err:      res.err,
		Attempts: res.attempts,
	}
}

func (o *Orchestrator) BuildAnalysis(ctx context.Context, accountID, url string, selected []domain.Competitor) Outcome[domain.AnalysisResult] {
	res := o.poll(ctx, accountID, o.opts.Deep, func(r *api.ReportSummary) bool {
		return r != nil
	})
	if res.reason == Live {
		return Outcome[domain.AnalysisResult]{
			Value:    adapters.MapReportToAnalysis(res.report),
			Attempts: res.attempts,
		}
	}

	zerolog.Ctx(ctx).Warn().
		Str("account_id", accountID).
		Str("url", url).
		Str("reason", string(res.reason)).
		Msg("Deep analysis degraded to fallback dashboard")

	return Outcome[domain.AnalysisResult]{
		Value:    domain.FallbackAnalysis(selected),
		Degraded: res.reason,
		Err:      res.err,
		Attempts: res.attempts,
	}
}

// DiagnoseMeta summarizes the Meta Ads account state from the latest report
func (o *Orchestrator) DiagnoseMeta(ctx context.Context, accountID string) Outcome[string] {
	res := o.poll(ctx, accountID, o.opts.Diagnostic, func(r *api.ReportSummary) bool {
		return r != nil
	})

	switch res.reason {
	case Live:
		text := res.report.Insight.Summary
		if text == "" {
			text = adapters.MetaDiagnostic(res.report.Meta)
		}
		if text == "" {
			text = MetaNoDiagnostic
		}
		return Outcome[string]{Value: text, Attempts: res.attempts}
	case BackendUnavailable:
		return Outcome[string]{Value: MetaRefreshFailed, Degraded: res.reason, Err: res.err}
	default:
		return Outcome[string]{Value: MetaFetchFailed, Degraded: res.reason, Err: res.err, Attempts: res.attempts}
	}
}
