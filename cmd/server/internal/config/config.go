// Package config loads server configuration from the environment, with
// an optional YAML file supplying defaults underneath it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the unified server configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Oracle OracleConfig
	Worker WorkerConfig
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Env  string // dev, staging, production
	Port string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
	File   string // optional rotating log file path
}

// OracleConfig holds the planning oracle connection settings.
type OracleConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// WorkerConfig sizes the background job pool.
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// fileConfig mirrors Config for the optional YAML file. Only fields set
// in the file participate; environment variables always win.
type fileConfig struct {
	Server struct {
		Env  string `yaml:"env"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Oracle struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"oracle"`
	Worker struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"worker"`
}

// GlobalConfig is the process-wide configuration instance.
var GlobalConfig *Config

// LoadConfig builds the configuration from CONFIG_FILE (if set) and the
// environment, environment taking precedence.
func LoadConfig() (*Config, error) {
	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("ENV", defaultStr(fc.Server.Env, "dev")),
			Port: getEnv("PORT", defaultStr(fc.Server.Port, "8000")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", defaultStr(fc.Log.Level, "info")),
			Format: getEnv("LOG_FORMAT", defaultStr(fc.Log.Format, "console")),
			File:   getEnv("LOG_FILE", fc.Log.File),
		},
		Oracle: OracleConfig{
			BaseURL:        getEnv("ORACLE_BASE_URL", defaultStr(fc.Oracle.BaseURL, "https://api.openai.com/v1")),
			APIKey:         getEnv("ORACLE_API_KEY", fc.Oracle.APIKey),
			Model:          getEnv("ORACLE_MODEL", defaultStr(fc.Oracle.Model, "gpt-4o-mini")),
			TimeoutSeconds: getEnvInt("ORACLE_TIMEOUT_SECONDS", defaultInt(fc.Oracle.TimeoutSeconds, 60)),
		},
		Worker: WorkerConfig{
			Count:     getEnvInt("WORKER_COUNT", defaultInt(fc.Worker.Count, 4)),
			QueueSize: getEnvInt("WORKER_QUEUE_SIZE", defaultInt(fc.Worker.QueueSize, 64)),
		},
	}

	GlobalConfig = cfg
	return cfg, nil
}

// ValidateConfig checks the configuration for consistency.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid PORT value: %s (must be 1-65535)", cfg.Server.Port))
	}

	validEnvs := map[string]bool{"dev": true, "development": true, "staging": true, "production": true}
	if !validEnvs[cfg.Server.Env] {
		errs = append(errs, fmt.Sprintf("invalid ENV: %s (must be: dev, development, staging, production)", cfg.Server.Env))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid LOG_LEVEL: %s (must be: debug, info, warn, error)", cfg.Log.Level))
	}

	validLogFormats := map[string]bool{"console": true, "json": true}
	if !validLogFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT: %s (must be: console, json)", cfg.Log.Format))
	}

	if cfg.Oracle.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("invalid ORACLE_TIMEOUT_SECONDS: %d (must be >= 1)", cfg.Oracle.TimeoutSeconds))
	}
	if cfg.Server.Env == "production" && cfg.Oracle.APIKey == "" {
		errs = append(errs, "ORACLE_API_KEY is required in production environment")
	}

	if cfg.Worker.Count < 1 {
		errs = append(errs, fmt.Sprintf("invalid WORKER_COUNT: %d (must be >= 1)", cfg.Worker.Count))
	}
	if cfg.Worker.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid WORKER_QUEUE_SIZE: %d (must be >= 1)", cfg.Worker.QueueSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "dev" || c.Server.Env == "development"
}

// GetServerAddr returns the listen address.
func (c *Config) GetServerAddr() string {
	return ":" + c.Server.Port
}

// PrintConfig renders the configuration with secrets masked.
func (c *Config) PrintConfig() string {
	return fmt.Sprintf(`Configuration Loaded:
  Environment: %s
  Server Port: %s
  Logging:
    - Level: %s
    - Format: %s
    - File: %s
  Oracle:
    - Base URL: %s
    - Model: %s
    - API Key: %s
    - Timeout: %ds
  Workers:
    - Count: %d
    - Queue Size: %d`,
		c.Server.Env,
		c.Server.Port,
		c.Log.Level,
		c.Log.Format,
		c.Log.File,
		c.Oracle.BaseURL,
		c.Oracle.Model,
		maskSecret(c.Oracle.APIKey),
		c.Oracle.TimeoutSeconds,
		c.Worker.Count,
		c.Worker.QueueSize)
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "***configured***"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func defaultStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func defaultInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
