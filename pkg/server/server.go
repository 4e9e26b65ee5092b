package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metagrowth/growth-agent/pkg/handlers/alerts"
	"github.com/metagrowth/growth-agent/pkg/handlers/auth"
	"github.com/metagrowth/growth-agent/pkg/handlers/health"
	"github.com/metagrowth/growth-agent/pkg/handlers/reports"
	"github.com/metagrowth/growth-agent/pkg/handlers/research"
	"github.com/metagrowth/growth-agent/pkg/handlers/traffic"
	"github.com/metagrowth/growth-agent/pkg/handlers/voice"
	growthmiddleware "github.com/metagrowth/growth-agent/pkg/server/middleware"
	researchsvc "github.com/metagrowth/growth-agent/pkg/services/research"
	trafficsvc "github.com/metagrowth/growth-agent/pkg/services/traffic"
	voicesvc "github.com/metagrowth/growth-agent/pkg/services/voice"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Reports   reports.Reader
	Scheduler reports.Scheduler
	Alerts    alerts.Lister
	Traffic   trafficsvc.Service
	Research  researchsvc.Service
	Voice     voicesvc.Service
}

type Config struct {
	Addr            string
	Environment     string
	Auth            auth.Config
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	router := ConfigureRouter(logger, config)

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: config.ShutdownTimeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func ConfigureRouter(logger zerolog.Logger, config Config) *chi.Mux {
	deps := config.Dependencies

	healthHandler := health.NewHandler(config.Environment)
	authHandler := auth.NewHandler(config.Auth)
	reportHandler := reports.NewHandler(deps.Reports, deps.Scheduler)
	alertHandler := alerts.NewHandler(deps.Alerts)
	trafficHandler := traffic.NewHandler(deps.Traffic)
	researchHandler := research.NewHandler(deps.Research)
	voiceHandler := voice.NewHandler(deps.Voice)

	router := chi.NewRouter()

	router.Use(growthmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler.Health)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/reports/{accountId}", func(r chi.Router) {
		r.Get("/", reportHandler.GetReport)
		r.Post("/refresh", reportHandler.Refresh)
	})
	router.Get("/alerts", alertHandler.ListAlerts)

	router.Route("/traffic", func(r chi.Router) {
		r.Post("/batch", trafficHandler.Batch)
		r.Get("/{domain}", trafficHandler.GetTraffic)
	})

	router.Route("/workflow", func(r chi.Router) {
		r.Get("/providers", researchHandler.ListProviders)
		r.Get("/tasks", researchHandler.ListTasks)
		r.Post("/config", researchHandler.Configure)
		r.Post("/execute", researchHandler.Execute)
		r.Post("/task", researchHandler.ExecuteTask)
	})

	router.Route("/voice", func(r chi.Router) {
		r.Get("/health", voiceHandler.Health)
		r.Post("/tts", voiceHandler.TextToSpeech)
		r.Post("/tts/raw", voiceHandler.TextToSpeechRaw)
		r.Post("/stt", voiceHandler.SpeechToText)
		r.Post("/query", voiceHandler.Query)
		r.Post("/speak", voiceHandler.Speak)
	})

	return router
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
