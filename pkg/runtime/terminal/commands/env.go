package commands

import (
	"context"
	"time"

	"github.com/metagrowth/growth-agent/pkg/app"
	"github.com/metagrowth/growth-agent/pkg/client"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/runtime/terminal/export"
	"github.com/metagrowth/growth-agent/pkg/services/config"
	"github.com/metagrowth/growth-agent/pkg/services/genai"
	"github.com/metagrowth/growth-agent/pkg/services/orchestrator"
)

// DefaultPause is the delay between two loading messages
const DefaultPause = 800 * time.Millisecond

// Env is what the commands take from the process that runs them
type Env struct {
	Reporter *export.Reporter
	// Client returns the backend client bound to the active profile
	Client func(ctx context.Context) (*client.Client, error)
	// Settings loads the local backend configuration
	Settings func() (*config.Settings, error)
	// Model returns the model used by scan, nil when none is configured
	Model func(settings *config.Settings) genai.TextModel
	// Backend opens the local backend used by refresh
	Backend func(ctx context.Context, settings *config.Settings) (*app.App, error)
	// Sleep paces the polling passes
	Sleep orchestrator.Sleeper
	// Pause separates loading messages
	Pause time.Duration
}

// offlineBackend answers every call as unreachable so that demo data is used
type offlineBackend struct{}

func (offlineBackend) RefreshReport(context.Context, string, bool) error {
	return client.ErrUnavailable
}

func (offlineBackend) GetReport(context.Context, string) (*api.ReportSummary, error) {
	return nil, client.ErrUnavailable
}
