package storage

import (
	"fmt"
	"os"
)

// Provider names accepted by Config.Provider.
const (
	ProviderLocal = "local"
	ProviderAzure = "azure"
	ProviderGCS   = "gcs"
)

// Config selects and parameterizes the asset storage backend.
type Config struct {
	Provider         string `toml:"provider"`
	Directory        string `toml:"directory"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Bucket           string `toml:"bucket"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Directory        string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Bucket           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Directory != "" {
		c.Directory = overlay.Directory
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Directory == "" {
		c.Directory = "img"
	}
	if c.ContainerName == "" {
		c.ContainerName = "assets"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(env.Provider, &c.Provider)
	set(env.Directory, &c.Directory)
	set(env.ContainerName, &c.ContainerName)
	set(env.ConnectionString, &c.ConnectionString)
	set(env.AccountURL, &c.AccountURL)
	set(env.Bucket, &c.Bucket)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderLocal:
		return nil
	case ProviderAzure:
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("azure provider requires connection_string or account_url")
		}
		return nil
	case ProviderGCS:
		if c.Bucket == "" {
			return fmt.Errorf("gcs provider requires bucket")
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
}
