// Package config provides configuration management for the risk server.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no external databases and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the SQLite database

	// Model artifacts
	ModelPath  string // Path to the serialized classifier
	ScalerPath string // Path to the serialized scaler

	// Drift detection
	DriftThreshold float64 // Moderate alert threshold (percentage points)
	HighThreshold  float64 // High alert threshold (percentage points)
	DriftWindow    int     // Number of recent visits analyzed

	// Auth settings
	JWTSecret string        // Secret for signing access tokens
	TokenTTL  time.Duration // Access token lifetime

	// Server settings
	HTTPPort int // HTTP listen port

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".pulseguard")

	return &LiteConfig{
		DataDir:        dataDir,
		ModelPath:      "artifacts/hypertension_model.json",
		ScalerPath:     "artifacts/scaler.json",
		DriftThreshold: 15.0,
		HighThreshold:  25.0,
		DriftWindow:    3,
		TokenTTL:       24 * time.Hour,
		HTTPPort:       8080,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Data directory
	if v := os.Getenv("PULSEGUARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Model artifacts
	if v := os.Getenv("PULSEGUARD_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("PULSEGUARD_SCALER_PATH"); v != "" {
		cfg.ScalerPath = v
	}

	// Drift detection
	if v := os.Getenv("PULSEGUARD_DRIFT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.DriftThreshold = f
		}
	}
	if v := os.Getenv("PULSEGUARD_HIGH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.HighThreshold = f
		}
	}
	if v := os.Getenv("PULSEGUARD_DRIFT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2 {
			cfg.DriftWindow = n
		}
	}

	// Auth
	cfg.JWTSecret = os.Getenv("PULSEGUARD_JWT_SECRET")
	if v := os.Getenv("PULSEGUARD_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}

	// Server
	if v := os.Getenv("PULSEGUARD_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	// Logging
	if v := os.Getenv("PULSEGUARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PULSEGUARD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// DatabasePath returns the path to the SQLite database.
func (c *LiteConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "pulseguard.db")
}

// UserDBPath returns the path to the user account SQLite database.
func (c *LiteConfig) UserDBPath() string {
	return filepath.Join(c.DataDir, "users.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
