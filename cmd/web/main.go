package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/metagrowth/growth-agent/pkg/app"
	"github.com/metagrowth/growth-agent/pkg/handlers/auth"
	"github.com/metagrowth/growth-agent/pkg/server"
	"github.com/metagrowth/growth-agent/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the growth agent API server and refresh workers",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a settings file (environment variables override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.IsLocal() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	backend, err := app.New(ctx, settings)
	if err != nil {
		return err
	}
	defer backend.Close()

	workflowCtrl, err := backend.NewController()
	if err != nil {
		return fmt.Errorf("failed to create workflow controller: %w", err)
	}
	if err := workflowCtrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workflow controller: %w", err)
	}
	defer workflowCtrl.Stop()

	if settings.JWTSecret == "change-me" && !settings.IsLocal() {
		logger.Warn().Msg("JWT_SECRET is the default value, set it before exposing the API")
	}

	web := server.NewWebAPI(logger, server.Config{
		Addr:        settings.Addr(),
		Environment: settings.Environment,
		Auth: auth.Config{
			Secret:    settings.JWTSecret,
			ExpiresIn: time.Duration(settings.JWTExpMinutes) * time.Minute,
		},
		Dependencies: server.Dependencies{
			Reports:   backend.Reports,
			Scheduler: workflowCtrl,
			Alerts:    backend.Alerts,
			Traffic:   backend.Traffic,
			Research:  backend.Research,
			Voice:     backend.Voice,
		},
	})

	return web.Start()
}
