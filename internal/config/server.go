package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/warranty/pkg/formatting"
)

const (
	EnvServerHost              = "WARRANTY_SERVER_HOST"
	EnvServerPort              = "WARRANTY_SERVER_PORT"
	EnvServerReadTimeout       = "WARRANTY_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "WARRANTY_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "WARRANTY_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout   = "WARRANTY_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerMaxHeaderSize     = "WARRANTY_SERVER_MAX_HEADER_SIZE"

	// EnvPlatformPort is set by Cloud Run and Cloud Functions. It applies
	// only when EnvServerPort is unset.
	EnvPlatformPort = "PORT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are sized for
// multipart uploads of up to four photos plus a synchronous mail send.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
	MaxHeaderSize     string `toml:"max_header_size"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return duration(c.ReadTimeout)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return duration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return duration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// MaxHeaderBytes returns MaxHeaderSize in bytes.
func (c *ServerConfig) MaxHeaderBytes() int {
	n, err := formatting.ParseBytes(c.MaxHeaderSize)
	if err != nil {
		return 0
	}
	return int(n)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.MaxHeaderSize != "" {
		c.MaxHeaderSize = overlay.MaxHeaderSize
	}
	base, over := c.durations(), overlay.durations()
	for i := range base {
		if *over[i].value != "" {
			*base[i].value = *over[i].value
		}
	}
}

type durationField struct {
	name     string
	env      string
	fallback string
	value    *string
}

func (c *ServerConfig) durations() []durationField {
	return []durationField{
		{"read_timeout", EnvServerReadTimeout, "2m", &c.ReadTimeout},
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", &c.ReadHeaderTimeout},
		{"write_timeout", EnvServerWriteTimeout, "2m", &c.WriteTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.MaxHeaderSize == "" {
		c.MaxHeaderSize = "1MB"
	}
	for _, d := range c.durations() {
		if *d.value == "" {
			*d.value = d.fallback
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}

	port := os.Getenv(EnvServerPort)
	if port == "" {
		port = os.Getenv(EnvPlatformPort)
	}
	if port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}

	if v := os.Getenv(EnvServerMaxHeaderSize); v != "" {
		c.MaxHeaderSize = v
	}
	for _, d := range c.durations() {
		if v := os.Getenv(d.env); v != "" {
			*d.value = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := formatting.ParseBytes(c.MaxHeaderSize); err != nil {
		return fmt.Errorf("invalid max_header_size: %w", err)
	}
	for _, d := range c.durations() {
		if _, err := time.ParseDuration(*d.value); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
