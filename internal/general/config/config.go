package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"database"`
	} `yaml:"database"`
	RabbitMQ struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"rabbitmq"`
	Classifier struct {
		// BaseURL of the external intent classifier. Empty means the
		// deterministic keyword classifier is used instead.
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"classifier"`
	Services struct {
		DispatchServicePort int `yaml:"dispatch_service"`
	} `yaml:"services"`
	Dispatch struct {
		// BookingThreshold is the booking count above which any action
		// requires confirmation.
		BookingThreshold       int `yaml:"booking_threshold"`
		ConfirmationTTLSeconds int `yaml:"confirmation_ttl_seconds"`
	} `yaml:"dispatch"`
	Updater struct {
		TickIntervalSeconds int `yaml:"tick_interval_seconds"`
		TripDurationMinutes int `yaml:"trip_duration_minutes"`
	} `yaml:"updater"`
	JWT struct {
		SecretKey string `yaml:"secret_key"`
	} `yaml:"jwt"`
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ConfirmationTTL returns the confirmation session TTL as a duration.
func (c *Config) ConfirmationTTL() time.Duration {
	return time.Duration(c.Dispatch.ConfirmationTTLSeconds) * time.Second
}

// TickInterval returns the updater tick interval as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Updater.TickIntervalSeconds) * time.Second
}

// TripDuration returns the fixed trip duration as a duration.
func (c *Config) TripDuration() time.Duration {
	return time.Duration(c.Updater.TripDurationMinutes) * time.Minute
}

// ClassifierTimeout returns the classifier HTTP timeout as a duration.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	// Classifier
	if cfg.Classifier.TimeoutSeconds == 0 {
		cfg.Classifier.TimeoutSeconds = 10
	}

	// Services
	if cfg.Services.DispatchServicePort == 0 {
		cfg.Services.DispatchServicePort = 3000
	}

	// Dispatch pipeline
	if cfg.Dispatch.BookingThreshold == 0 {
		cfg.Dispatch.BookingThreshold = 5
	}
	if cfg.Dispatch.ConfirmationTTLSeconds == 0 {
		cfg.Dispatch.ConfirmationTTLSeconds = 300
	}

	// Updater
	if cfg.Updater.TickIntervalSeconds == 0 {
		cfg.Updater.TickIntervalSeconds = 60
	}
	if cfg.Updater.TripDurationMinutes == 0 {
		cfg.Updater.TripDurationMinutes = 120
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// DB
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.database is required")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	// Services
	if c.Services.DispatchServicePort <= 0 || c.Services.DispatchServicePort > 65535 {
		problems = append(problems, "services.dispatch_service must be in 1..65535")
	}

	// Dispatch pipeline
	if c.Dispatch.BookingThreshold < 0 {
		problems = append(problems, "dispatch.booking_threshold must be >= 0")
	}
	if c.Dispatch.ConfirmationTTLSeconds <= 0 {
		problems = append(problems, "dispatch.confirmation_ttl_seconds must be > 0")
	}

	// Updater
	if c.Updater.TickIntervalSeconds <= 0 {
		problems = append(problems, "updater.tick_interval_seconds must be > 0")
	}
	if c.Updater.TripDurationMinutes <= 0 {
		problems = append(problems, "updater.trip_duration_minutes must be > 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
