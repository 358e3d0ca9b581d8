package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JaimeStill/warranty/pkg/lifecycle"
)

type local struct {
	dir    string
	logger *slog.Logger
}

func newLocal(dir string, logger *slog.Logger) *local {
	return &local{dir: dir, logger: logger}
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("storage", func(context.Context) error {
		info, err := os.Stat(l.dir)
		if err != nil {
			// missing assets degrade the report, they never block it
			l.logger.Warn("asset directory unavailable", "dir", l.dir, "error", err)
			return nil
		}
		if !info.IsDir() {
			return fmt.Errorf("asset path %s is not a directory", l.dir)
		}
		l.logger.Info("asset directory ready", "dir", l.dir)
		return nil
	})
	return nil
}

func (l *local) Read(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read asset %s: %w", key, err)
	}
	return data, nil
}
