package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/services/orchestrator"
	"github.com/metagrowth/growth-agent/pkg/services/stage"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	env      *Env
	sel      string
	name     string
	demoOnly bool
	disclose bool
}

func NewAnalyzeCmd(env *Env) *cobra.Command {
	ac := &AnalyzeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Discover competitors of a site and build its growth dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.sel, "select", "0,1,2", "Indexes of the three competitors to analyze")
	cmd.Flags().StringVar(&ac.name, "name", "", "Name used in the loading messages")
	cmd.Flags().BoolVar(&ac.demoOnly, "demo-only", false, "Skip the backend and use demo data")
	cmd.Flags().BoolVar(&ac.disclose, "disclose", false, "Report on stderr when demo data was used")

	return cmd
}

// ParseSelection reads a comma separated list of competitor indexes
func ParseSelection(s string) (*stage.Selection, error) {
	var indexes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid competitor index %q", part)
		}
		indexes = append(indexes, i)
	}
	sel := stage.NewSelection(indexes...)
	if len(indexes) != stage.RequiredSelections || !sel.Ready() {
		return nil, fmt.Errorf("select exactly %d distinct competitors, got %q", stage.RequiredSelections, s)
	}
	return sel, nil
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sel, err := ParseSelection(ac.sel)
	if err != nil {
		return err
	}

	var (
		backend orchestrator.Backend = offlineBackend{}
		creds   stage.Credentials
	)
	if !ac.demoOnly {
		c, err := ac.env.Client(ctx)
		if err != nil {
			return err
		}
		backend, creds = c, c.Session()
	}

	ctrl := stage.NewController(stage.Options{
		Analyzer:      orchestrator.New(backend, orchestrator.Options{Sleep: ac.env.Sleep}),
		Credentials:   creds,
		Authenticator: notLoggedIn{},
		Observer: func(_, to stage.Stage, _ stage.Session) {
			for _, msg := range stage.LoadingMessages(to, ac.name) {
				fmt.Fprintln(out, msg)
				if ac.env.Pause > 0 {
					_ = orchestrator.Sleep(ctx, ac.env.Pause)
				}
			}
		},
	})

	if err := ctrl.Submit(ctx, args[0]); err != nil {
		if errors.Is(err, stage.ErrInvalidDomain) {
			return fmt.Errorf("invalid domain %q: enter a site such as example.com", args[0])
		}
		return err
	}
	if err := ac.env.Reporter.Competitors(ctrl.Session().Competitors); err != nil {
		return err
	}

	if err := ctrl.Confirm(ctx, sel); err != nil {
		return fmt.Errorf("selection %q: %w", ac.sel, err)
	}

	s := ctrl.Session()
	if ac.disclose && s.DemoMode() {
		reasons := make([]string, 0, len(s.Degraded))
		for _, r := range s.Degraded {
			reasons = append(reasons, string(r))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: showing demo data (%s)\n", strings.Join(reasons, ", "))
	}
	return ac.env.Reporter.Dashboard(s.URL, *s.Analysis)
}

type notLoggedIn struct{}

func (notLoggedIn) Authenticate(context.Context) error {
	return errors.New("not logged in, run `growth login` or use --demo-only")
}
