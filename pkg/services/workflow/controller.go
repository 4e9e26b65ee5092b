package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/alert"
	"github.com/metagrowth/growth-agent/pkg/services/report"
	"github.com/rs/zerolog"
)

var (
	ErrQueueFull      = errors.New("refresh queue is full")
	ErrAlreadyStarted = errors.New("refresh controller already started")
)

const (
	LanePriority = "priority"
	LaneDefault  = "default"
)

// Controller queues report refreshes and runs them in the background
type Controller interface {
	Enqueue(ctx context.Context, accountID string, priority bool) (domain.RefreshJob, error)
	Submit(ctx context.Context, job domain.RefreshJob) (domain.RefreshJob, error)
	Start(ctx context.Context) error
	Stop()
	Results() <-chan domain.JobResult
}

type Config struct {
	Workers   int
	QueueSize int
	Schedules []Schedule
	// Now and After drive the hourly schedule
	Now   func() time.Time
	After func(d time.Duration) <-chan time.Time
}

func DefaultConfig() Config {
	return Config{
		Workers:   2,
		QueueSize: 100,
		Schedules: DefaultSchedules(),
	}
}

type DefaultController struct {
	generator report.Service
	alerts    alert.Service
	config    Config

	priority chan domain.RefreshJob
	standard chan domain.RefreshJob
	results  chan domain.JobResult

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	runners    []*Runner
	wg         sync.WaitGroup
}

func NewController(generator report.Service, alerts alert.Service, config Config) (*DefaultController, error) {
	if generator == nil {
		return nil, fmt.Errorf("report service is nil")
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.After == nil {
		config.After = time.After
	}

	return &DefaultController{
		generator: generator,
		alerts:    alerts,
		config:    config,
		priority:  make(chan domain.RefreshJob, config.QueueSize),
		standard:  make(chan domain.RefreshJob, config.QueueSize),
		results:   make(chan domain.JobResult, config.QueueSize),
	}, nil
}

func (ctrl *DefaultController) Enqueue(ctx context.Context, accountID string, priority bool) (domain.RefreshJob, error) {
	return ctrl.Submit(ctx, domain.RefreshJob{AccountID: accountID, Priority: priority})
}

// Submit fills in job defaults and puts it on its lane without blocking
func (ctrl *DefaultController) Submit(ctx context.Context, job domain.RefreshJob) (domain.RefreshJob, error) {
	if job.AccountID == "" {
		return job, fmt.Errorf("account id is required")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Domain == "" {
		job.Domain = domain.DefaultDomain
	}
	if job.Timeframe == "" {
		job.Timeframe = domain.DefaultTimeframe
	}
	job.EnqueuedAt = ctrl.config.Now()

	lane, name := ctrl.standard, LaneDefault
	if job.Priority {
		lane, name = ctrl.priority, LanePriority
	}

	select {
	case lane <- job:
	default:
		return job, fmt.Errorf("%s lane: %w", name, ErrQueueFull)
	}

	zerolog.Ctx(ctx).Info().
		Str("job_id", job.ID).
		Str("account_id", job.AccountID).
		Str("queue", name).
		Msg("Refresh scheduled")
	return job, nil
}

func (ctrl *DefaultController) Start(ctx context.Context) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.cancelFunc != nil {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	ctrl.cancelFunc = cancel

	for i := 0; i < ctrl.config.Workers; i++ {
		runner := NewRunner(fmt.Sprintf("refresh-%d", i), ctrl.priority, ctrl.standard, ctrl.generator, ctrl.alerts)
		ctrl.runners = append(ctrl.runners, runner)
		go runner.Run(ctx)

		ctrl.wg.Add(1)
		go ctrl.forward(runner)
	}

	if len(ctrl.config.Schedules) > 0 {
		ctrl.wg.Add(1)
		go ctrl.schedule(ctx)
	}

	go func() {
		ctrl.wg.Wait()
		close(ctrl.results)
	}()
	return nil
}

// Stop cancels the runners and the scheduler and waits for the jobs in flight
func (ctrl *DefaultController) Stop() {
	ctrl.mu.Lock()
	cancel := ctrl.cancelFunc
	runners := ctrl.runners
	ctrl.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	for _, runner := range runners {
		<-runner.Done()
	}
	ctrl.wg.Wait()
}

func (ctrl *DefaultController) Results() <-chan domain.JobResult {
	return ctrl.results
}

func (ctrl *DefaultController) forward(runner *Runner) {
	defer ctrl.wg.Done()
	for result := range runner.Progress() {
		select {
		case ctrl.results <- result:
		default:
		}
	}
}
