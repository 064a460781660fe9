package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinichub/registry/internal/config"
	"github.com/clinichub/registry/internal/domain/appointment"
	"github.com/clinichub/registry/internal/domain/console"
	"github.com/clinichub/registry/internal/domain/patient"
	"github.com/clinichub/registry/internal/platform/bridge"
	"github.com/clinichub/registry/internal/platform/db"
	"github.com/clinichub/registry/internal/platform/metrics"
	"github.com/clinichub/registry/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "registry-server",
		Short: "Patient Registry API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initDBCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the registry API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the registry schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			init := db.NewInitializer()
			if err := init.Run(ctx, pool); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			fmt.Println("Schema initialized successfully.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Schema initialization runs in the background. The API group is gated
	// on it, so requests arriving early get a 503 instead of hitting
	// missing tables.
	init := db.NewInitializer()
	go func() {
		if err := init.Run(ctx, pool); err != nil {
			logger.Error().Err(err).Msg("schema initialization failed")
			return
		}
		logger.Info().Msg("schema ready")
	}()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	m := metrics.New()
	e.Use(m.Middleware())
	e.GET("/metrics", m.Handler())

	// Cross-client update broadcasting
	var br bridge.Bridge
	if cfg.BridgeEnabled {
		hub := bridge.NewHub(logger)
		hub.RegisterRoutes(e)
		br = hub
		logger.Info().Str("channel", bridge.ChannelName).Msg("update bridge enabled")
	} else {
		br = bridge.NewNoop()
	}

	// API group, gated on schema readiness
	apiV1 := e.Group("/api/v1")
	apiV1.Use(db.ReadyGate(init))

	// Patient domain
	patientRepo := patient.NewRepo(pool, logger)
	patientSvc := patient.NewService(patientRepo, br, logger)
	patientHandler := patient.NewHandler(patientSvc)
	patientHandler.RegisterRoutes(apiV1)

	// Appointment domain
	apptRepo := appointment.NewRepo(pool, logger)
	apptSvc := appointment.NewService(apptRepo, logger)
	apptHandler := appointment.NewHandler(apptSvc)
	apptHandler.RegisterRoutes(apiV1)

	// SQL console
	consoleSvc := console.NewService(pool, logger)
	consoleHandler := console.NewHandler(consoleSvc)
	consoleHandler.RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", db.HealthHandler(pool, init))

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
