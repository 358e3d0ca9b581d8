// Command function serves the claim endpoint as a Cloud Functions HTTP
// target named ProcesarGarantia.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/JaimeStill/warranty/internal/api"
	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/internal/infrastructure"
	"github.com/JaimeStill/warranty/internal/warranty"
	"github.com/JaimeStill/warranty/pkg/handlers"
	"github.com/JaimeStill/warranty/pkg/middleware"
)

const target = "ProcesarGarantia"

var (
	handler http.Handler
	once    sync.Once
	initErr error
)

func init() {
	functions.HTTP(target, procesarGarantia)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", target)
	}

	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}

func procesarGarantia(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		handler, initErr = newHandler(context.Background())
	})
	if initErr != nil {
		log.Printf("function init failed: %v", initErr)
		handlers.RespondJSON(w, http.StatusInternalServerError, warranty.Failed(initErr))
		return
	}

	handler.ServeHTTP(w, r)
}

func newHandler(ctx context.Context) (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := infra.Start(); err != nil {
		return nil, err
	}

	runtime := api.NewRuntime(cfg, infra)
	domain, err := api.NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	h := domain.Warranty.Handler(warranty.HandlerOptions{
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		Base64Body:    cfg.API.Base64Body,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", h.Submit)

	mw := middleware.New()
	mw.Use(middleware.CORS(&cfg.API.CORS))
	mw.Use(middleware.Logger(runtime.Logger))

	runtime.Logger.Info("function initialized", "target", target, "version", cfg.Version)
	return mw.Apply(mux), nil
}
