package commands

import (
	"fmt"

	"github.com/metagrowth/growth-agent/pkg/services/genai"
	"github.com/metagrowth/growth-agent/pkg/services/orchestrator"
	"github.com/metagrowth/growth-agent/pkg/services/stage"
	"github.com/spf13/cobra"
)

type DiagnoseCmd struct {
	env    *Env
	direct bool
}

func NewDiagnoseCmd(env *Env) *cobra.Command {
	dc := &DiagnoseCmd{env: env}
	cmd := &cobra.Command{
		Use:   "diagnose <url>",
		Short: "Diagnose the Meta Ads account of a site",
		Args:  cobra.ExactArgs(1),
		RunE:  dc.run,
	}

	cmd.Flags().BoolVar(&dc.direct, "direct", false, "Ask the generative model instead of the backend")

	return cmd
}

func (dc *DiagnoseCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	url := args[0]

	if err := stage.ValidateURL(url); err != nil {
		return fmt.Errorf("invalid domain %q: enter a site such as example.com", url)
	}

	if dc.direct {
		settings, err := dc.env.Settings()
		if err != nil {
			return err
		}
		text := genai.NewClient(dc.env.Model(settings), genai.Options{}).AnalyzeMetaConnection(ctx, url)
		return dc.env.Reporter.Text("Meta Ads diagnostic", text)
	}

	c, err := dc.env.Client(ctx)
	if err != nil {
		return err
	}
	out := orchestrator.New(c, orchestrator.Options{Sleep: dc.env.Sleep}).DiagnoseMeta(ctx, stage.DeriveAccountID(url))
	return dc.env.Reporter.Text("Meta Ads diagnostic", out.Value)
}
