package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pulseguard-risk-server/internal/domain"
)

// Manager loads and validates application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pulseguard/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("PULSEGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit_rps", 20.0)
	viper.SetDefault("server.rate_burst", 40)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "pulseguard")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "10m")
	viper.SetDefault("database.migrations_path", "migrations")

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.summary_ttl", "15m")
	viper.SetDefault("cache.prediction_capacity", 1024)

	// Model artifact defaults
	viper.SetDefault("model.model_path", "artifacts/hypertension_model.json")
	viper.SetDefault("model.scaler_path", "artifacts/scaler.json")

	// Drift detection defaults
	viper.SetDefault("drift.drift_threshold", 15.0)
	viper.SetDefault("drift.high_threshold", 25.0)
	viper.SetDefault("drift.window", 3)

	// Auth defaults
	viper.SetDefault("auth.secret", "")
	viper.SetDefault("auth.token_ttl", "24h")

	// Advisor defaults
	viper.SetDefault("advisor.base_url", "")
	viper.SetDefault("advisor.api_key", "")
	viper.SetDefault("advisor.model", "llama-3.1-8b-instant")
	viper.SetDefault("advisor.timeout", "20s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate database configuration
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if config.Database.Username == "" {
		return fmt.Errorf("database username is required")
	}

	// Validate model artifact configuration
	if config.Model.ModelPath == "" {
		return fmt.Errorf("model path is required")
	}
	if config.Model.ScalerPath == "" {
		return fmt.Errorf("scaler path is required")
	}

	// Validate drift configuration
	if config.Drift.Window < 2 {
		return fmt.Errorf("drift window must be at least 2, got %d", config.Drift.Window)
	}
	if config.Drift.DriftThreshold < 0 || config.Drift.HighThreshold < config.Drift.DriftThreshold {
		return fmt.Errorf("drift thresholds must satisfy 0 <= drift <= high, got %.1f/%.1f",
			config.Drift.DriftThreshold, config.Drift.HighThreshold)
	}

	// Validate auth configuration
	if config.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required")
	}

	// Validate cache configuration
	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache is enabled")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetRedisConnectionString returns the Redis connection string
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
