package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/internal/config"
	"github.com/smartenroll/backend/pkg/auth"
	v1 "github.com/smartenroll/backend/pkg/controllers/v1"
	"github.com/smartenroll/backend/pkg/metrics"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"github.com/smartenroll/backend/pkg/render"
	"github.com/smartenroll/backend/pkg/router"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration")
	}

	gin.SetMode(cfg.GinMode)
	setupLogging(cfg)

	dialector, err := models.Dialector(cfg.Database, cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Database")
	}

	db, err := models.Connect(dialector)
	if err != nil {
		log.Fatal().Err(err).Msg("Database")
	}
	defer func() {
		_ = models.Close(db)
	}()

	// Refuse to start when the store cannot be reached
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := models.Ping(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Database")
	}

	authenticator := auth.NewAuthenticator(db)
	if cfg.DefaultAdminPassword != "" {
		if _, err := authenticator.EnsureDefaultAdmin(log.Logger.WithContext(ctx), cfg.DefaultAdminUsername, cfg.DefaultAdminPassword); err != nil {
			log.Fatal().Err(err).Msg("Default admin")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	renderer, err := render.NewTextRenderer(cfg.DocDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Documents")
	}

	r, err := router.Config(cfg, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Router")
	}

	router.AttachRoutes(r.Group("/"), router.Routes{
		Controller: v1.Controller{
			Registrar: registrar.New(db, registrar.WithMetrics(metrics.NewLedger(reg))),
			Auth:      authenticator,
			Tokens:    auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, nil),
			Renderer:  renderer,
		},
		DB:          db,
		Registry:    reg,
		Version:     version,
		EnablePprof: cfg.EnablePprof,
	})

	log.Info().Str("version", version).Str("port", cfg.Port).Msg("Starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Router")
	}
}

// setupLogging configures the global logger.
//
// If LOG_FORMAT is not set, it defaults to human readable for development
// and JSON for release.
func setupLogging(cfg config.Config) {
	output := io.Writer(os.Stdout)
	if (cfg.LogFormat == "" && gin.IsDebugging()) || cfg.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if gin.IsDebugging() {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(output).With().Timestamp().Logger()
}
