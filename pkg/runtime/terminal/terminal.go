package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/metagrowth/growth-agent/pkg/app"
	"github.com/metagrowth/growth-agent/pkg/client"
	"github.com/metagrowth/growth-agent/pkg/runtime/terminal/commands"
	"github.com/metagrowth/growth-agent/pkg/runtime/terminal/export"
	"github.com/metagrowth/growth-agent/pkg/services/config"
	"github.com/metagrowth/growth-agent/pkg/services/genai"
	"github.com/metagrowth/growth-agent/pkg/services/orchestrator"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/metagrowth/growth-agent/pkg/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	opts    Options
	env     *commands.Env
	rootCmd *cobra.Command

	credentialsPath string
	profile         string
	host            string
	configPath      string
	verbose         bool
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	ErrOutput io.Writer
	// Sleep replaces wall-clock waiting and disables the message pause
	Sleep orchestrator.Sleeper
	// Model overrides the provider backed model of scan and diagnose --direct
	Model genai.TextModel
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	cli := &CLI{opts: opts}
	cli.env = &commands.Env{
		Reporter: export.NewReporter(opts.Output),
		Client:   cli.client,
		Settings: cli.settings,
		Model:    cli.model,
		Backend:  app.New,
		Sleep:    opts.Sleep,
		Pause:    commands.DefaultPause,
	}
	if opts.Sleep != nil {
		cli.env.Pause = 0
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteArgs runs the CLI with explicit arguments
func (cli *CLI) ExecuteArgs(ctx context.Context, args []string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "growth",
		Short:         "Growth strategist for Meta Ads advertisers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.WarnLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.opts.ErrOutput}).
				Level(level).With().Timestamp().Logger()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx))
		},
	}
	cmd.SetOut(cli.opts.Output)
	cmd.SetErr(cli.opts.ErrOutput)

	cmd.PersistentFlags().StringVar(&cli.credentialsPath, "credentials", defaultCredentialsPath(),
		"Path to the credentials file")
	cmd.PersistentFlags().StringVar(&cli.profile, "profile", config.DefaultProfile, "Credentials profile")
	cmd.PersistentFlags().StringVar(&cli.host, "host", "", "Backend URL, overrides the profile host")
	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to a settings file")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(commands.NewLoginCmd(cli.env))
	cmd.AddCommand(commands.NewLogoutCmd(cli.env))
	cmd.AddCommand(commands.NewAnalyzeCmd(cli.env))
	cmd.AddCommand(commands.NewScanCmd(cli.env))
	cmd.AddCommand(commands.NewDiagnoseCmd(cli.env))
	cmd.AddCommand(commands.NewRefreshCmd(cli.env))

	return cmd
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".growthagent", "credentials")
	}
	return filepath.Join(home, ".growthagent", "credentials")
}

// client binds a backend client to the selected profile. The host flag wins
// over the profile host, which wins over the default URL.
func (cli *CLI) client(ctx context.Context) (*client.Client, error) {
	registry, err := config.NewRegistry(cli.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	host := cli.host
	if host == "" {
		if p, err := registry.GetProfile(ctx, cli.profile); err == nil {
			host = p.Host
		}
	}
	if cli.host != "" {
		if err := registry.SetHost(ctx, cli.profile, cli.host); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Could not store profile host")
		}
	}

	return client.New(client.Options{
		BaseURL: host,
		Session: session.New(config.NewTokenStore(registry, cli.profile)),
	}), nil
}

func (cli *CLI) settings() (*config.Settings, error) {
	return config.LoadSettings(cli.configPath)
}

func (cli *CLI) model(settings *config.Settings) genai.TextModel {
	if cli.opts.Model != nil {
		return cli.opts.Model
	}
	p := providers.NewGemini(providers.GeminiConfig{APIKey: settings.GoogleAPIKey})
	if !p.Available() {
		return nil
	}
	return genai.FromProvider(p)
}
