package config

import (
	"os"

	"github.com/JaimeStill/warranty/pkg/document"
)

const (
	EnvDocumentLayoutFile = "WARRANTY_DOCUMENT_LAYOUT_FILE"
	EnvDocumentLeftLogo   = "WARRANTY_DOCUMENT_LEFT_LOGO"
	EnvDocumentRightLogo  = "WARRANTY_DOCUMENT_RIGHT_LOGO"
)

// DocumentConfig selects the report layout and the logo asset keys.
type DocumentConfig struct {
	LayoutFile string `toml:"layout_file"`
	LeftLogo   string `toml:"left_logo"`
	RightLogo  string `toml:"right_logo"`
}

// Layout returns the layout from LayoutFile, or the default layout when unset.
func (c *DocumentConfig) Layout() (document.Layout, error) {
	if c.LayoutFile == "" {
		return document.DefaultLayout(), nil
	}
	return document.LoadLayout(c.LayoutFile)
}

// Finalize applies defaults and environment variable overrides.
func (c *DocumentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *DocumentConfig) Merge(overlay *DocumentConfig) {
	if overlay.LayoutFile != "" {
		c.LayoutFile = overlay.LayoutFile
	}
	if overlay.LeftLogo != "" {
		c.LeftLogo = overlay.LeftLogo
	}
	if overlay.RightLogo != "" {
		c.RightLogo = overlay.RightLogo
	}
}

func (c *DocumentConfig) loadDefaults() {
	if c.LeftLogo == "" {
		c.LeftLogo = "logoUpower.png"
	}
	if c.RightLogo == "" {
		c.RightLogo = "logoUpower.png"
	}
}

func (c *DocumentConfig) loadEnv() {
	if v := os.Getenv(EnvDocumentLayoutFile); v != "" {
		c.LayoutFile = v
	}
	if v := os.Getenv(EnvDocumentLeftLogo); v != "" {
		c.LeftLogo = v
	}
	if v := os.Getenv(EnvDocumentRightLogo); v != "" {
		c.RightLogo = v
	}
}
