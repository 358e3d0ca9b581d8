package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/warranty/pkg/formatting"
	"github.com/JaimeStill/warranty/pkg/middleware"
	"github.com/JaimeStill/warranty/pkg/openapi"
)

const defaultMaxUploadSize = "25MB"

var corsEnv = &middleware.CORSEnv{
	Enabled:        "WARRANTY_CORS_ENABLED",
	Origins:        "WARRANTY_CORS_ORIGINS",
	AllowedMethods: "WARRANTY_CORS_ALLOWED_METHODS",
	AllowedHeaders: "WARRANTY_CORS_ALLOWED_HEADERS",
	MaxAge:         "WARRANTY_CORS_MAX_AGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "WARRANTY_OPENAPI_TITLE",
	Description: "WARRANTY_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload decoding, CORS, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	Base64Body    bool                  `toml:"base64_body"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return formatting.Megabytes(25)
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
// Base64Body applies only when the overlay enables it.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.Base64Body {
		c.Base64Body = true
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = defaultMaxUploadSize
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("WARRANTY_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("WARRANTY_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("WARRANTY_API_BASE64_BODY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Base64Body = b
		}
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_upload_size: %s", c.MaxUploadSize)
	}
	return nil
}
