// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies (logging, asset storage, mail) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/pkg/lifecycle"
	"github.com/JaimeStill/warranty/pkg/mail"
	"github.com/JaimeStill/warranty/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Mailer    mail.Sender
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(os.Stderr, cfg.Env())

	store, err := storage.New(ctx, &cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	mailer, err := mail.New(&cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("mail init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		Mailer:    mailer,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// NewLogger returns a text logger for the local environment and a JSON
// logger everywhere else.
func NewLogger(w io.Writer, env string) *slog.Logger {
	if env == "local" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
