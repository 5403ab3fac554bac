// Package config assembles runtime settings from the environment, with
// an optional YAML file override for deployments that prefer files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// CLU configuration. All four must be set for recognition to run;
	// the bot falls back to manual slot collection otherwise.
	CLUEndpoint   string `yaml:"clu_endpoint"`
	CLUAPIKey     string `yaml:"clu_api_key"`
	CLUProject    string `yaml:"clu_project"`
	CLUDeployment string `yaml:"clu_deployment"`

	// HTTP configuration
	HTTPAddr string `yaml:"http_addr"`

	// State persistence configuration
	StateBackend string        `yaml:"state_backend"` // memory | file | redis
	StateDir     string        `yaml:"state_dir"`
	SessionTTL   time.Duration `yaml:"session_ttl"`

	// Redis configuration
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// NATS configuration
	NatsURL     string        `yaml:"nats_url"`
	NatsSubject string        `yaml:"nats_subject"`
	NatsTimeout time.Duration `yaml:"nats_timeout"`

	// Logging configuration
	LogLevel string `yaml:"log_level"`
}

func Load() *Config {
	return &Config{
		// CLU settings
		CLUEndpoint:   getEnv("CLU_ENDPOINT", ""),
		CLUAPIKey:     getEnv("CLU_API_KEY", ""),
		CLUProject:    getEnv("CLU_PROJECT", ""),
		CLUDeployment: getEnv("CLU_DEPLOYMENT", ""),

		// HTTP settings
		HTTPAddr: getEnv("HTTP_ADDR", ":3978"),

		// State settings
		StateBackend: getEnv("STATE_BACKEND", "memory"),
		StateDir:     getEnv("STATE_DIR", ".adbot/state"),
		SessionTTL:   getDurationEnv("SESSION_TTL", 24*time.Hour),

		// Redis settings
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		// NATS settings
		NatsURL:     getEnv("NATS_URL", ""),
		NatsSubject: getEnv("NATS_SUBJECT", "adbot.turns"),
		NatsTimeout: getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		// Logging settings
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ApplyFile overlays settings from a YAML file onto the config. Fields
// absent from the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects combinations the process cannot start with.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown state backend %q", c.StateBackend)
	}
	if c.StateBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("redis state backend requires a redis address")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
