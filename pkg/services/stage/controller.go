package stage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/metagrowth/growth-agent/pkg/services/orchestrator"
	"github.com/rs/zerolog"
)

// Authenticator obtains a session token when the user has none
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Credentials reports whether a token is already held
type Credentials interface {
	Authenticated() bool
}

// Observer is told about every stage transition
type Observer func(from, to Stage, s Session)

type Options struct {
	Analyzer      orchestrator.Analyzer
	Credentials   Credentials
	Authenticator Authenticator
	Observer      Observer
}

// Controller moves one Session forward through the stages. Transitions
// only go forward, a finished session stays on the dashboard.
type Controller struct {
	analyzer orchestrator.Analyzer
	creds    Credentials
	auth     Authenticator
	observer Observer

	mu      sync.Mutex
	session Session
}

func NewController(opts Options) *Controller {
	return &Controller{
		analyzer: opts.Analyzer,
		creds:    opts.Credentials,
		auth:     opts.Authenticator,
		observer: opts.Observer,
		session:  Session{Stage: Hero},
	}
}

// Session returns a deep copy of the current state
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

func (c *Controller) Submit(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if err := ValidateURL(url); err != nil {
		return err
	}

	c.mu.Lock()
	if c.session.Stage != Hero {
		c.mu.Unlock()
		return fmt.Errorf("submit in stage %s: %w", c.session.Stage, ErrWrongStage)
	}
	c.mu.Unlock()

	if c.creds != nil && !c.creds.Authenticated() && c.auth != nil {
		if err := c.auth.Authenticate(ctx); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}

	accountID := DeriveAccountID(url)
	c.mu.Lock()
	if c.session.Stage != Hero {
		c.mu.Unlock()
		return fmt.Errorf("submit in stage %s: %w", c.session.Stage, ErrWrongStage)
	}
	c.session.URL = url
	c.session.AccountID = accountID
	c.transition(WaitingInitial)
	c.mu.Unlock()

	zerolog.Ctx(ctx).Info().Str("url", url).Str("account_id", accountID).Msg("Starting competitor discovery")
	out := c.analyzer.DiscoverCompetitors(ctx, accountID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Competitors = out.Value
	if !out.IsLive() {
		c.session.Degraded = append(c.session.Degraded, out.Degraded)
	}
	c.transition(SelectCompetitors)
	return nil
}

func (c *Controller) Confirm(ctx context.Context, sel *Selection) error {
	c.mu.Lock()
	if c.session.Stage != SelectCompetitors {
		c.mu.Unlock()
		return fmt.Errorf("confirm in stage %s: %w", c.session.Stage, ErrWrongStage)
	}
	if sel == nil || !sel.Ready() {
		c.mu.Unlock()
		return ErrSelectionIncomplete
	}
	chosen := sel.Chosen(c.session.Competitors)
	if len(chosen) != RequiredSelections {
		c.mu.Unlock()
		return ErrSelectionIncomplete
	}
	accountID, url := c.session.AccountID, c.session.URL
	c.transition(WaitingSecondary)
	c.mu.Unlock()

	zerolog.Ctx(ctx).Info().Str("account_id", accountID).Int("selected", len(chosen)).Msg("Starting deep analysis")
	out := c.analyzer.BuildAnalysis(ctx, accountID, url, chosen)

	c.mu.Lock()
	defer c.mu.Unlock()
	analysis := out.Value
	c.session.Analysis = &analysis
	if !out.IsLive() {
		c.session.Degraded = append(c.session.Degraded, out.Degraded)
	}
	c.transition(Dashboard)
	return nil
}

// transition must be called with mu held
func (c *Controller) transition(to Stage) {
	from := c.session.Stage
	c.session.Stage = to
	if c.observer != nil {
		c.observer(from, to, c.session.clone())
	}
}
