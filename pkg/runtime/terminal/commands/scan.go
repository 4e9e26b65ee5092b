package commands

import (
	"fmt"

	"github.com/metagrowth/growth-agent/pkg/services/genai"
	"github.com/metagrowth/growth-agent/pkg/services/siteprofile"
	"github.com/metagrowth/growth-agent/pkg/services/stage"
	"github.com/spf13/cobra"
)

type ScanCmd struct {
	env     *Env
	sel     string
	noFetch bool
}

func NewScanCmd(env *Env) *cobra.Command {
	sc := &ScanCmd{env: env}
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Analyze a site directly with the generative model, without the backend",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.sel, "select", "0,1,2", "Indexes of the three competitors to analyze")
	cmd.Flags().BoolVar(&sc.noFetch, "no-fetch", false, "Do not read the site's landing page")

	return cmd
}

func (sc *ScanCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	url := args[0]

	if err := stage.ValidateURL(url); err != nil {
		return fmt.Errorf("invalid domain %q: enter a site such as example.com", url)
	}
	sel, err := ParseSelection(sc.sel)
	if err != nil {
		return err
	}

	settings, err := sc.env.Settings()
	if err != nil {
		return err
	}

	opts := genai.Options{}
	if !sc.noFetch {
		opts.Profiler = siteprofile.NewProfiler(nil)
	}
	model := genai.NewClient(sc.env.Model(settings), opts)

	competitors := model.IdentifyCompetitors(ctx, url)
	if err := sc.env.Reporter.Competitors(competitors); err != nil {
		return err
	}

	chosen := sel.Chosen(competitors)
	result := model.PerformGrowthAnalysis(ctx, url, chosen)
	return sc.env.Reporter.Dashboard(url, result)
}
