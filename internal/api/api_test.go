package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/JaimeStill/warranty/internal/api"
	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/internal/infrastructure"
	"github.com/JaimeStill/warranty/internal/warranty"
	"github.com/JaimeStill/warranty/pkg/module"
)

func setup(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	t.Setenv("WARRANTY_ENV", "test")
	t.Setenv("WARRANTY_MAIL_PROVIDER", "log")
	t.Setenv("WARRANTY_MAIL_TO", "desk@example.com")
	t.Setenv("WARRANTY_STORAGE_DIRECTORY", dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)
	return router
}

func TestWarrantyEndpoint(t *testing.T) {
	router := setup(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("fecha", "2024-01-01")
	w.WriteField("cliente", "Acme S.A.")
	w.WriteField("email", "x@y.com")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/warranty", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var res warranty.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Message != warranty.SuccessMessage {
		t.Errorf("result: got %+v", res)
	}
}

func TestWarrantyEndpointRejectsNonMultipart(t *testing.T) {
	router := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/warranty", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
}

func TestOpenAPISpec(t *testing.T) {
	router := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var spec struct {
		OpenAPI    string                    `json:"openapi"`
		Paths      map[string]map[string]any `json:"paths"`
		Components struct {
			Responses map[string]any `json:"responses"`
		} `json:"components"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi: got %s", spec.OpenAPI)
	}
	if _, ok := spec.Paths["/warranty"]["post"]; !ok {
		t.Errorf("missing POST /warranty: got %+v", spec.Paths)
	}
	if _, ok := spec.Components.Responses["ClaimFailed"]; !ok {
		t.Error("missing ClaimFailed response component")
	}
}
