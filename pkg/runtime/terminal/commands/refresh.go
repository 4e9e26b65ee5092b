package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type RefreshCmd struct {
	env       *Env
	accountID string
	domain    string
	timeframe string
}

func NewRefreshCmd(env *Env) *cobra.Command {
	rc := &RefreshCmd{env: env}
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Generate a report run against the local database",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.accountID, "account-id", "", "Meta Ads account id")
	cmd.Flags().StringVar(&rc.domain, "domain", "", "Domain of the advertiser")
	cmd.Flags().StringVar(&rc.timeframe, "timeframe", "last_7d", "Reporting timeframe")

	_ = cmd.MarkFlagRequired("account-id")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func (rc *RefreshCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := rc.env.Settings()
	if err != nil {
		return err
	}

	backend, err := rc.env.Backend(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to open backend: %w", err)
	}
	defer backend.Close()

	run, err := backend.Generator.Generate(ctx, rc.accountID, rc.domain, rc.timeframe)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}
	return rc.env.Reporter.Run(run)
}
