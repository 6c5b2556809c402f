package domain

import (
	"time"
)

// Configuration Models

// Config represents the main application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Model    ModelConfig    `mapstructure:"model"`
	Drift    DriftConfig    `mapstructure:"drift"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	RedisURL           string        `mapstructure:"redis_url"`
	SummaryTTL         time.Duration `mapstructure:"summary_ttl"`
	PredictionCapacity int           `mapstructure:"prediction_capacity"`
}

// ModelConfig locates the pre-trained classifier and scaler artifacts
type ModelConfig struct {
	ModelPath  string `mapstructure:"model_path"`
	ScalerPath string `mapstructure:"scaler_path"`
}

// DriftConfig holds the drift detection thresholds
type DriftConfig struct {
	DriftThreshold float64 `mapstructure:"drift_threshold"`
	HighThreshold  float64 `mapstructure:"high_threshold"`
	Window         int     `mapstructure:"window"`
}

// AuthConfig holds JWT authentication settings
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// AdvisorConfig holds the optional LLM advice backend settings
type AdvisorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
