package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/api"
	"github.com/pulseguard-risk-server/internal/assistant"
	"github.com/pulseguard-risk-server/internal/auth"
	"github.com/pulseguard-risk-server/internal/cache"
	"github.com/pulseguard-risk-server/internal/config"
	"github.com/pulseguard-risk-server/internal/database"
	"github.com/pulseguard-risk-server/internal/middleware"
	"github.com/pulseguard-risk-server/internal/model"
	"github.com/pulseguard-risk-server/internal/realtime"
	"github.com/pulseguard-risk-server/internal/repository"
	"github.com/pulseguard-risk-server/internal/service"
	"github.com/pulseguard-risk-server/internal/userstore"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting PulseGuard risk server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Database pool and schema migrations
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner, err := database.NewMigrationRunner(
		configManager.GetDatabaseConnectionString(),
		cfg.Database.MigrationsPath,
		logger,
	)
	if err != nil {
		logger.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := runner.Up(); err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}
	runner.Close()

	// Scoring capability
	classifier, scaler, err := model.LoadCapability(logger, cfg.Model.ModelPath, cfg.Model.ScalerPath)
	if err != nil {
		logger.Fatalf("Failed to load model artifacts: %v", err)
	}

	memo, err := cache.NewPredictionCache(cfg.Cache.PredictionCapacity)
	if err != nil {
		logger.Fatalf("Failed to create prediction cache: %v", err)
	}
	predictor := service.NewRiskPredictor(logger, classifier, scaler, memo)

	var summaries *cache.SummaryCache
	if cfg.Cache.Enabled {
		summaries, err = cache.NewSummaryCache(cfg.Cache.RedisURL, cfg.Cache.SummaryTTL)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer summaries.Close()
	}

	// Accounts and tokens
	users, err := userstore.NewPostgresStoreFromURL(configManager.GetDatabaseConnectionString())
	if err != nil {
		logger.Fatalf("Failed to open user store: %v", err)
	}
	defer users.Close()

	tokens, err := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatalf("Failed to configure token issuer: %v", err)
	}
	authSvc := auth.NewService(users, tokens, logger)

	hub := realtime.NewHub(logger)
	go hub.Run()
	defer hub.Close()

	server := api.NewServer(api.Dependencies{
		Log:       logger,
		Predictor: predictor,
		Patients:  repository.NewPatientRepository(db.Pool, logger),
		Visits:    repository.NewVisitRepository(db.Pool, logger),
		Alerts:    repository.NewAlertRepository(db.Pool, logger),
		Auth:      authSvc,
		Advisor: assistant.NewAdvisor(assistant.Config{
			BaseURL: cfg.Advisor.BaseURL,
			APIKey:  cfg.Advisor.APIKey,
			Model:   cfg.Advisor.Model,
			Timeout: cfg.Advisor.Timeout,
		}, logger),
		Hub:       hub,
		Summaries: summaries,
		DriftOpts: service.DriftOptions{
			Window:         cfg.Drift.Window,
			DriftThreshold: cfg.Drift.DriftThreshold,
			HighThreshold:  cfg.Drift.HighThreshold,
		},
		RateLimiter: middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateBurst),
		LogLevel:    cfg.Logging.Level,
	})

	if err := server.Start(ctx, &cfg.Server); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
