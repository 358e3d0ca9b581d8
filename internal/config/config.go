package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/warranty/pkg/mail"
	"github.com/JaimeStill/warranty/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvWarrantyEnv             = "WARRANTY_ENV"
	EnvWarrantyShutdownTimeout = "WARRANTY_SHUTDOWN_TIMEOUT"
	EnvWarrantyVersion         = "WARRANTY_VERSION"
)

var mailEnv = &mail.Env{
	Provider:       "WARRANTY_MAIL_PROVIDER",
	APIKey:         "WARRANTY_MAIL_API_KEY",
	APIKeyFallback: "SENDGRID_API_KEY",
	Host:           "WARRANTY_MAIL_HOST",
	From:           "WARRANTY_MAIL_FROM",
	FromName:       "WARRANTY_MAIL_FROM_NAME",
	To:             "WARRANTY_MAIL_TO",
	Timeout:        "WARRANTY_MAIL_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "WARRANTY_STORAGE_PROVIDER",
	Directory:        "WARRANTY_STORAGE_DIRECTORY",
	ContainerName:    "WARRANTY_STORAGE_CONTAINER_NAME",
	ConnectionString: "WARRANTY_STORAGE_CONNECTION_STRING",
	AccountURL:       "WARRANTY_STORAGE_ACCOUNT_URL",
	Bucket:           "WARRANTY_STORAGE_BUCKET",
}

// Config is the root configuration for the warranty service.
type Config struct {
	Server          ServerConfig   `toml:"server"`
	API             APIConfig      `toml:"api"`
	Mail            mail.Config    `toml:"mail"`
	Storage         storage.Config `toml:"storage"`
	Document        DocumentConfig `toml:"document"`
	ShutdownTimeout string         `toml:"shutdown_timeout"`
	Version         string         `toml:"version"`
}

// Env returns the WARRANTY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvWarrantyEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Mail.Merge(&overlay.Mail)
	c.Storage.Merge(&overlay.Storage)
	c.Document.Merge(&overlay.Document)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Mail.Finalize(mailEnv); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Document.Finalize(); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvWarrantyShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvWarrantyVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvWarrantyEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
