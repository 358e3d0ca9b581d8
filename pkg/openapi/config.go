package openapi

import "os"

// Config holds OpenAPI metadata for spec generation.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Warranty API"
	}
	if c.Description == "" {
		c.Description = "Warranty claim intake: multipart form in, PDF report out by email."
	}
	if env == nil {
		return nil
	}
	if v := os.Getenv(env.Title); env.Title != "" && v != "" {
		c.Title = v
	}
	if v := os.Getenv(env.Description); env.Description != "" && v != "" {
		c.Description = v
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}
