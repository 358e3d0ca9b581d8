package mail

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

// Config parameterizes the outbound mail sender. It is injected into the
// sender at construction time.
type Config struct {
	Provider string   `toml:"provider"`
	APIKey   string   `toml:"api_key"`
	Host     string   `toml:"host"`
	From     string   `toml:"from"`
	FromName string   `toml:"from_name"`
	To       []string `toml:"to"`
	Timeout  string   `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
// APIKeyFallback is consulted when APIKey yields nothing.
type Env struct {
	Provider       string
	APIKey         string
	APIKeyFallback string
	Host           string
	From           string
	FromName       string
	To             string
	Timeout        string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.FromName != "" {
		c.FromName = overlay.FromName
	}
	if overlay.To != nil {
		c.To = overlay.To
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderSendGrid
	}
	if c.FromName == "" {
		c.FromName = "Garantías U-Power"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.Provider); v != "" {
		c.Provider = v
	}
	if v := lookup(env.APIKey); v != "" {
		c.APIKey = v
	} else if c.APIKey == "" {
		c.APIKey = lookup(env.APIKeyFallback)
	}
	if v := lookup(env.Host); v != "" {
		c.Host = v
	}
	if v := lookup(env.From); v != "" {
		c.From = v
	}
	if v := lookup(env.FromName); v != "" {
		c.FromName = v
	}
	if v := lookup(env.To); v != "" {
		var to []string
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				to = append(to, addr)
			}
		}
		c.To = to
	}
	if v := lookup(env.Timeout); v != "" {
		c.Timeout = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	switch c.Provider {
	case ProviderLog:
	case ProviderSendGrid:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
		if c.From == "" {
			return ErrNoSender
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}

	if len(c.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
