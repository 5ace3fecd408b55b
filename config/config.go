package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Metering  MeteringConfig  `json:"metering"`
	Publisher PublisherConfig `json:"publisher"`
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// MeteringConfig contains accounting engine settings. Intervals and the
// max session duration are expressed in milliseconds.
type MeteringConfig struct {
	PricePerSecond       float64 `json:"price_per_second"`
	TickIntervalMS       int     `json:"tick_interval_ms"`
	ReaperIntervalMS     int     `json:"reaper_interval_ms"`
	MaxSessionDurationMS int     `json:"max_session_duration_ms"`
}

// TickInterval returns the aggregation tick interval as a duration
func (m MeteringConfig) TickInterval() time.Duration {
	return time.Duration(m.TickIntervalMS) * time.Millisecond
}

// ReaperInterval returns the reaper interval as a duration
func (m MeteringConfig) ReaperInterval() time.Duration {
	return time.Duration(m.ReaperIntervalMS) * time.Millisecond
}

// MaxSessionDuration returns the max allowed session age as a duration
func (m MeteringConfig) MaxSessionDuration() time.Duration {
	return time.Duration(m.MaxSessionDurationMS) * time.Millisecond
}

// PublisherConfig contains external publishing channel settings
type PublisherConfig struct {
	Type          string `json:"type"` // "redis" or "log"
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	RedisStream   string `json:"redis_stream"`
}

// DatabaseConfig contains publish audit database settings
type DatabaseConfig struct {
	Path string `json:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// applyDefaults fills in the reference deployment values for anything
// left unset
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Metering.PricePerSecond == 0 {
		c.Metering.PricePerSecond = 0.001
	}
	if c.Metering.TickIntervalMS == 0 {
		c.Metering.TickIntervalMS = 1000
	}
	if c.Metering.ReaperIntervalMS == 0 {
		c.Metering.ReaperIntervalMS = 30000
	}
	if c.Metering.MaxSessionDurationMS == 0 {
		c.Metering.MaxSessionDurationMS = 300000
	}
	if c.Publisher.Type == "" {
		c.Publisher.Type = "redis"
	}
	if c.Publisher.RedisAddr == "" {
		c.Publisher.RedisAddr = "localhost:6379"
	}
	if c.Publisher.RedisStream == "" {
		c.Publisher.RedisStream = "streammeter:ledger"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./streammeter.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Metering.PricePerSecond <= 0 {
		return fmt.Errorf("%w: price_per_second must be positive", ErrInvalidConfig)
	}
	if c.Metering.TickIntervalMS <= 0 {
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.Metering.ReaperIntervalMS <= 0 {
		return fmt.Errorf("%w: reaper_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.Metering.MaxSessionDurationMS <= 0 {
		return fmt.Errorf("%w: max_session_duration_ms must be positive", ErrInvalidConfig)
	}

	switch c.Publisher.Type {
	case "redis":
		if c.Publisher.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis publisher", ErrInvalidConfig)
		}
		if c.Publisher.RedisStream == "" {
			return fmt.Errorf("%w: redis_stream is required for the redis publisher", ErrInvalidConfig)
		}
	case "log":
	default:
		return fmt.Errorf("%w: unknown publisher type %q", ErrInvalidConfig, c.Publisher.Type)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}

	return nil
}

// Load loads configuration from a JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("STREAMMETER_HOST", "0.0.0.0"),
			Port: getEnvInt("STREAMMETER_PORT", 8080),
		},
		Metering: MeteringConfig{
			PricePerSecond:       getEnvFloat("STREAMMETER_PRICE_PER_SECOND", 0.001),
			TickIntervalMS:       getEnvInt("STREAMMETER_TICK_INTERVAL_MS", 1000),
			ReaperIntervalMS:     getEnvInt("STREAMMETER_REAPER_INTERVAL_MS", 30000),
			MaxSessionDurationMS: getEnvInt("STREAMMETER_MAX_SESSION_DURATION_MS", 300000),
		},
		Publisher: PublisherConfig{
			Type:          getEnv("STREAMMETER_PUBLISHER_TYPE", "redis"),
			RedisAddr:     getEnv("STREAMMETER_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("STREAMMETER_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("STREAMMETER_REDIS_DB", 0),
			RedisStream:   getEnv("STREAMMETER_REDIS_STREAM", "streammeter:ledger"),
		},
		Database: DatabaseConfig{
			Path: getEnv("STREAMMETER_DB_PATH", "./streammeter.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("STREAMMETER_LOG_LEVEL", "info"),
			Format: getEnv("STREAMMETER_LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatVal float64
		fmt.Sscanf(value, "%f", &floatVal)
		return floatVal
	}
	return defaultValue
}
