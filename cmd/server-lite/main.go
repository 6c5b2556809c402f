// Package main provides the lightweight entry point for the PulseGuard risk
// server. This version requires no external databases and keeps all state in
// local SQLite files.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
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
	"github.com/pulseguard-risk-server/internal/domain"
	"github.com/pulseguard-risk-server/internal/model"
	"github.com/pulseguard-risk-server/internal/realtime"
	"github.com/pulseguard-risk-server/internal/service"
	"github.com/pulseguard-risk-server/internal/store"
	"github.com/pulseguard-risk-server/internal/userstore"
)

func main() {
	cfg := config.LoadLiteConfig()

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	logger.WithFields(logrus.Fields{
		"data_dir": cfg.DataDir,
		"port":     cfg.HTTPPort,
	}).Info("Starting PulseGuard risk server (lite)")

	if err := cfg.EnsureDataDir(); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath())
	if err != nil {
		logger.Fatalf("Failed to open local store: %v", err)
	}
	defer st.Close()

	users, err := userstore.NewSQLiteStore(cfg.UserDBPath())
	if err != nil {
		logger.Fatalf("Failed to open user store: %v", err)
	}
	defer users.Close()

	classifier, scaler, err := model.LoadCapability(logger, cfg.ModelPath, cfg.ScalerPath)
	if err != nil {
		logger.Fatalf("Failed to load model artifacts: %v", err)
	}

	memo, err := cache.NewPredictionCache(1024)
	if err != nil {
		logger.Fatalf("Failed to create prediction cache: %v", err)
	}
	predictor := service.NewRiskPredictor(logger, classifier, scaler, memo)

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = ephemeralSecret()
		if err != nil {
			logger.Fatalf("Failed to generate signing secret: %v", err)
		}
		logger.Warn("PULSEGUARD_JWT_SECRET not set; using an ephemeral secret, sessions will not survive restarts")
	}

	tokens, err := auth.NewTokenIssuer(secret, cfg.TokenTTL)
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
		Patients:  st.Patients(),
		Visits:    st.Visits(),
		Alerts:    st.Alerts(),
		Auth:      authSvc,
		Advisor:   assistant.NewAdvisor(assistant.Config{}, logger),
		Hub:       hub,
		DriftOpts: service.DriftOptions{
			Window:         cfg.DriftWindow,
			DriftThreshold: cfg.DriftThreshold,
			HighThreshold:  cfg.HighThreshold,
		},
		LogLevel: cfg.LogLevel,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	serverCfg := &domain.ServerConfig{
		Host:         "0.0.0.0",
		Port:         cfg.HTTPPort,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.Start(ctx, serverCfg); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

func ephemeralSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}
	return logger
}
