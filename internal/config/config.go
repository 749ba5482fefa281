package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Store    StoreConfig    `yaml:"store"`
	Worker   WorkerConfig   `yaml:"worker"`
	Download DownloadConfig `yaml:"download"`
	Admin    AdminConfig    `yaml:"admin"`
}

// TelegramConfig holds Bot API configuration.
type TelegramConfig struct {
	Token       string `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	PollTimeout int    `yaml:"poll_timeout" envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30"`
	// HandlerTimeout bounds one job's or one callback's full handling.
	HandlerTimeout time.Duration `yaml:"handler_timeout" envconfig:"TELEGRAM_HANDLER_TIMEOUT" default:"50m"`
}

// StoreConfig holds SQLite storage configuration.
type StoreConfig struct {
	Path string `yaml:"path" envconfig:"STORE_PATH" default:"./data/fetchdl.db"`
}

// WorkerConfig holds queue worker configuration.
type WorkerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"5s"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	Dir     string        `yaml:"dir" envconfig:"DOWNLOAD_DIR" default:"./downloads"`
	Timeout time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"45m"`
}

// AdminConfig holds the ops sidecar HTTP server configuration.
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ADMIN_ENABLED" default:"true"`
	Host    string `yaml:"host" envconfig:"ADMIN_HOST" default:"127.0.0.1"`
	Port    int    `yaml:"port" envconfig:"ADMIN_PORT" default:"8990"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required")
	}
	if c.Download.Dir == "" {
		return fmt.Errorf("DOWNLOAD_DIR is required")
	}
	return nil
}

// Address returns the admin server address in host:port format.
func (c *AdminConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
