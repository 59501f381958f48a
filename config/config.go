// Package config holds the application configuration: server, checkpoint
// store, background dispatcher, tax year and logging. Tax schedules are
// configured separately in package factory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cukaiku/tax-engine/logging"
	"gopkg.in/yaml.v3"
)

// Config holds all cukai configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Tax        TaxConfig        `yaml:"tax"`
	Mail       MailConfig       `yaml:"mail"`
	Logging    logging.Config   `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	IdleTimeout     string   `yaml:"idle_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// StoreConfig configures the checkpoint store.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file, or ":memory:"
}

// DispatcherConfig configures background collaborator jobs.
type DispatcherConfig struct {
	Workers    int    `yaml:"workers"`
	QueueSize  int    `yaml:"queue_size"`
	JobTimeout string `yaml:"job_timeout"`
}

// TaxConfig selects the schedule.
type TaxConfig struct {
	Year         int    `yaml:"year"`          // 0 means the latest embedded year
	ScheduleFile string `yaml:"schedule_file"` // overrides the embedded schedule
}

// MailConfig configures the summary email.
type MailConfig struct {
	From   string `yaml:"from"`
	Locale string `yaml:"locale"` // en, ms, zh
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "30s",
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Store: StoreConfig{
			Path: "cukai.db",
		},
		Dispatcher: DispatcherConfig{
			Workers:    2,
			QueueSize:  256,
			JobTimeout: "10s",
		},
		Mail: MailConfig{
			From:   "CukaiKu <noreply@cukaiku.vercel.app>",
			Locale: "en",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads configuration from a YAML file over the defaults, then
// applies environment overrides. An empty path or a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// applyEnvOverrides applies CUKAI_* environment variables.
func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getenv("CUKAI_ADDR", c.Server.Addr)
	if origins := os.Getenv("CUKAI_CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}
	c.Store.Path = getenv("CUKAI_DB", c.Store.Path)
	c.Dispatcher.Workers = getenvInt("CUKAI_WORKERS", c.Dispatcher.Workers)
	c.Tax.Year = getenvInt("CUKAI_YEAR", c.Tax.Year)
	c.Tax.ScheduleFile = getenv("CUKAI_SCHEDULE", c.Tax.ScheduleFile)
	c.Mail.Locale = getenv("CUKAI_LOCALE", c.Mail.Locale)
	c.Logging.Level = getenv("CUKAI_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getenv("CUKAI_LOG_FORMAT", c.Logging.Format)
}

// Validate checks values that would otherwise fail at startup.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Dispatcher.Workers < 1 {
		return fmt.Errorf("dispatcher.workers must be at least 1, got %d", c.Dispatcher.Workers)
	}
	if c.Dispatcher.QueueSize < 1 {
		return fmt.Errorf("dispatcher.queue_size must be at least 1, got %d", c.Dispatcher.QueueSize)
	}
	if c.Tax.Year < 0 {
		return fmt.Errorf("tax.year must not be negative, got %d", c.Tax.Year)
	}
	for name, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"dispatcher.job_timeout":  c.Dispatcher.JobTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 15*time.Second)
}

// GetIdleTimeout returns the server idle timeout.
func (c *Config) GetIdleTimeout() time.Duration {
	return duration(c.Server.IdleTimeout, 60*time.Second)
}

// GetShutdownTimeout returns how long a graceful shutdown may take.
func (c *Config) GetShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 30*time.Second)
}

// GetJobTimeout returns the per-job dispatcher timeout.
func (c *Config) GetJobTimeout() time.Duration {
	return duration(c.Dispatcher.JobTimeout, 10*time.Second)
}
