package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/warranty/pkg/lifecycle"
	"github.com/JaimeStill/warranty/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocal(t *testing.T, dir string) storage.System {
	t.Helper()
	store, err := storage.New(context.Background(), &storage.Config{Provider: storage.ProviderLocal, Directory: dir}, discard())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	return store
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderLocal {
		t.Errorf("provider: got %s, want local", cfg.Provider)
	}
	if cfg.Directory != "img" {
		t.Errorf("directory: got %s, want img", cfg.Directory)
	}
	if cfg.ContainerName != "assets" {
		t.Errorf("container_name: got %s, want assets", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PROVIDER", "gcs")
	t.Setenv("TEST_BUCKET", "warranty-assets")

	env := &storage.Env{
		Provider: "TEST_PROVIDER",
		Bucket:   "TEST_BUCKET",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderGCS || cfg.Bucket != "warranty-assets" {
		t.Errorf("overrides: got provider %s bucket %s", cfg.Provider, cfg.Bucket)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{"azure without credentials", storage.Config{Provider: storage.ProviderAzure}, "connection_string or account_url"},
		{"gcs without bucket", storage.Config{Provider: storage.ProviderGCS}, "bucket"},
		{"unknown provider", storage.Config{Provider: "s3"}, "unknown storage provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{Provider: "local", Directory: "img"}
	base.Merge(&storage.Config{Provider: "azure", ConnectionString: "conn"})

	if base.Provider != "azure" || base.ConnectionString != "conn" || base.Directory != "img" {
		t.Errorf("merge: got %+v", base)
	}
}

func TestLocalRead(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logoUpower.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	store := newLocal(t, dir)

	data, err := store.Read(context.Background(), "logoUpower.png")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("content: got %q", data)
	}

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"missing", "absent.png", storage.ErrNotFound},
		{"empty", "", storage.ErrEmptyKey},
		{"traversal", "../secret", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Read(context.Background(), tt.key); !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLocalStartMissingDirectory(t *testing.T) {
	store := newLocal(t, filepath.Join(t.TempDir(), "absent"))

	lc := lifecycle.New()
	if err := store.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := lc.WaitForStartup(); err != nil {
		t.Errorf("missing asset directory should not fail startup: %v", err)
	}
}

func TestLocalStartNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	os.WriteFile(path, []byte("x"), 0644)
	store := newLocal(t, path)

	lc := lifecycle.New()
	store.Start(lc)
	if err := lc.WaitForStartup(); err == nil {
		t.Error("expected startup error for a file path")
	}
}

func TestRemoteStartMissingContainer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/storage/v1/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"The specified bucket does not exist."}}`))
			return
		}
		w.Header().Set("x-ms-error-code", "ContainerNotFound")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	t.Setenv("STORAGE_EMULATOR_HOST", srv.URL)

	tests := []struct {
		name string
		cfg  *storage.Config
	}{
		{"azure", &storage.Config{
			Provider:      storage.ProviderAzure,
			ContainerName: "absent",
			ConnectionString: "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
				"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
				"BlobEndpoint=" + srv.URL + "/devstoreaccount1;",
		}},
		{"gcs", &storage.Config{Provider: storage.ProviderGCS, Bucket: "absent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := storage.New(context.Background(), tt.cfg, discard())
			if err != nil {
				t.Fatalf("new storage: %v", err)
			}

			lc := lifecycle.New()
			if err := store.Start(lc); err != nil {
				t.Fatalf("start: %v", err)
			}
			if err := lc.WaitForStartup(); err != nil {
				t.Errorf("missing %s assets should not fail startup: %v", tt.name, err)
			}
			lc.Shutdown(time.Second)
		})
	}
}

func TestAzureRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/devstoreaccount1/assets/logoUpower.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png"))
		default:
			w.Header().Set("x-ms-error-code", "BlobNotFound")
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	conn := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
		"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
		"BlobEndpoint=" + srv.URL + "/devstoreaccount1;"

	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "assets",
		ConnectionString: conn,
	}

	store, err := storage.New(context.Background(), cfg, discard())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	data, err := store.Read(context.Background(), "logoUpower.png")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("content: got %q", data)
	}

	if _, err := store.Read(context.Background(), "absent.png"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error: got %v, want ErrNotFound", err)
	}
}
