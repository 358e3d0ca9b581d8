package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/pkg/formatting"
)

const baseConfig = `
shutdown_timeout = "20s"
version = "1.2.0"

[server]
port = 8080
read_timeout = "1m"
write_timeout = "2m"

[api]
base_path = "/api"
max_upload_size = "10MB"

[api.cors]
enabled = true
origins = ["https://garantias.example.com"]

[mail]
provider = "sendgrid"
api_key = "SG.base"
from = "garantias@example.com"
to = ["desk@example.com", "ops@example.com"]

[storage]
provider = "local"
directory = "assets"

[document]
left_logo = "left.png"
`

const overlayConfig = `
[server]
port = 9090

[mail]
provider = "log"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"WARRANTY_ENV", "WARRANTY_MAIL_API_KEY", "SENDGRID_API_KEY", "WARRANTY_MAIL_PROVIDER", "WARRANTY_MAIL_FROM", "WARRANTY_MAIL_TO", "WARRANTY_SERVER_PORT", "PORT"} {
		t.Setenv(name, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if !cfg.API.CORS.Enabled || len(cfg.API.CORS.Origins) != 1 {
		t.Errorf("cors: got %+v", cfg.API.CORS)
	}
	if len(cfg.Mail.To) != 2 || cfg.Mail.APIKey != "SG.base" {
		t.Errorf("mail: got %+v", cfg.Mail)
	}
	if cfg.Storage.Directory != "assets" {
		t.Errorf("storage directory: got %s", cfg.Storage.Directory)
	}
	if cfg.Document.LeftLogo != "left.png" || cfg.Document.RightLogo != "logoUpower.png" {
		t.Errorf("document logos: got %+v", cfg.Document)
	}
	if cfg.API.OpenAPI.Title == "" {
		t.Error("openapi title should default")
	}
}

func TestLoadOverlay(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)
	t.Setenv("WARRANTY_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("overlay port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Mail.Provider != "log" {
		t.Errorf("overlay mail provider: got %s, want log", cfg.Mail.Provider)
	}
	if cfg.Mail.From != "garantias@example.com" {
		t.Errorf("base mail from should survive overlay, got %s", cfg.Mail.From)
	}
	if cfg.Env() != "staging" {
		t.Errorf("env: got %s", cfg.Env())
	}
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("WARRANTY_MAIL_PROVIDER", "log")
	t.Setenv("WARRANTY_MAIL_TO", "desk@example.com")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BasePath != "/api" {
		t.Errorf("base path: got %s", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != formatting.Megabytes(25) {
		t.Errorf("default max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %s", cfg.Server.Addr())
	}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("storage provider: got %s", cfg.Storage.Provider)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("SENDGRID_API_KEY", "SG.env")
	t.Setenv("WARRANTY_MAIL_FROM", "garantias@example.com")
	t.Setenv("WARRANTY_MAIL_TO", "desk@example.com")
	t.Setenv("WARRANTY_SERVER_PORT", "7070")
	t.Setenv("WARRANTY_API_BASE64_BODY", "true")
	t.Setenv("WARRANTY_API_MAX_UPLOAD_SIZE", "5MB")
	t.Setenv("WARRANTY_DOCUMENT_RIGHT_LOGO", "right.png")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Mail.APIKey != "SG.env" {
		t.Errorf("mail api key: got %q", cfg.Mail.APIKey)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if !cfg.API.Base64Body {
		t.Error("base64 body should be enabled")
	}
	if cfg.API.MaxUploadSizeBytes() != 5*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Document.RightLogo != "right.png" {
		t.Errorf("right logo: got %s", cfg.Document.RightLogo)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"sendgrid without key", `[mail]
provider = "sendgrid"
from = "a@b.com"
to = ["c@d.com"]`},
		{"bad upload size", `[api]
max_upload_size = "lots"
[mail]
provider = "log"`},
		{"bad port", `[server]
port = 70000
[mail]
provider = "log"`},
		{"unknown storage", `[storage]
provider = "s3"
[mail]
provider = "log"`},
		{"bad shutdown timeout", `shutdown_timeout = "soon"
[mail]
provider = "log"`},
		{"log without recipients", `[mail]
provider = "log"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.content)
			chdir(t, dir)

			if _, err := config.Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDocumentLayout(t *testing.T) {
	cfg := config.DocumentConfig{}
	layout, err := cfg.Layout()
	if err != nil {
		t.Fatalf("default layout: %v", err)
	}
	if layout.Page != "A4" {
		t.Errorf("page: got %s", layout.Page)
	}

	cfg.LayoutFile = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := cfg.Layout(); err == nil {
		t.Error("expected error for missing layout file")
	}
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantPort int
	}{
		{"default", nil, 8080},
		{"platform port", map[string]string{"PORT": "9000"}, 9000},
		{"explicit port wins", map[string]string{"PORT": "9000", "WARRANTY_SERVER_PORT": "7000"}, 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "")
			t.Setenv("WARRANTY_SERVER_PORT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := config.ServerConfig{}
			if err := cfg.Finalize(); err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("port: got %d, want %d", cfg.Port, tt.wantPort)
			}
			if cfg.ReadHeaderTimeoutDuration() != 10*time.Second {
				t.Errorf("read header timeout: got %v", cfg.ReadHeaderTimeoutDuration())
			}
			if cfg.MaxHeaderBytes() != 1024*1024 {
				t.Errorf("max header bytes: got %d", cfg.MaxHeaderBytes())
			}
		})
	}
}

func TestServerConfigMerge(t *testing.T) {
	base := config.ServerConfig{Port: 8080, ReadTimeout: "1m", WriteTimeout: "1m"}
	base.Merge(&config.ServerConfig{WriteTimeout: "5m", MaxHeaderSize: "64KB"})

	if base.WriteTimeout != "5m" || base.ReadTimeout != "1m" {
		t.Errorf("timeouts: got read=%s write=%s", base.ReadTimeout, base.WriteTimeout)
	}
	if base.MaxHeaderSize != "64KB" || base.Port != 8080 {
		t.Errorf("merge: got %+v", base)
	}

	bad := config.ServerConfig{ReadHeaderTimeout: "later"}
	if err := bad.Finalize(); err == nil {
		t.Error("expected error for invalid read_header_timeout")
	}
}
