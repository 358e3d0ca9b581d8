package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gcs "cloud.google.com/go/storage"

	"github.com/JaimeStill/warranty/pkg/lifecycle"
)

type gcsStore struct {
	client *gcs.Client
	bucket string
	logger *slog.Logger
}

func newGCS(ctx context.Context, cfg *Config, logger *slog.Logger) (*gcsStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &gcsStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

func (g *gcsStore) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("storage", func(ctx context.Context) error {
		if _, err := g.client.Bucket(g.bucket).Attrs(ctx); err != nil {
			missing := errors.Is(err, gcs.ErrBucketNotExist)
			g.logger.Warn("asset bucket unavailable", "bucket", g.bucket, "missing", missing, "error", err)
			return nil
		}
		g.logger.Info("asset bucket ready", "bucket", g.bucket)
		return nil
	})
	lc.OnShutdown(func() {
		if err := g.client.Close(); err != nil {
			g.logger.Error("gcs client close failed", "error", err)
		}
	})
	return nil
}

func (g *gcsStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open object gs://%s/%s: %w", g.bucket, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object gs://%s/%s: %w", g.bucket, key, err)
	}
	return data, nil
}
