// Package storage provides read access to static assets such as report logos,
// backed by a local directory, Azure Blob Storage, or Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/warranty/pkg/lifecycle"
)

// System reads assets by key.
type System interface {
	// Start registers a startup probe that verifies the backing location exists.
	Start(lc *lifecycle.Coordinator) error
	// Read returns the full content of the asset at key.
	// Returns ErrNotFound if the asset does not exist.
	Read(ctx context.Context, key string) ([]byte, error)
}

// New creates the storage system selected by cfg.Provider.
// Remote clients are constructed here; no request is issued until Start or Read.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderLocal, "":
		return newLocal(cfg.Directory, logger), nil
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderGCS:
		return newGCS(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
