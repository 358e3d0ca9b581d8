// Command server runs the warranty claim API as a standalone HTTP service.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/warranty/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := srv.Start(); err != nil {
		srv.Shutdown(cfg.ShutdownTimeoutDuration())
		log.Fatal("server start failed: ", err)
	}

	<-ctx.Done()

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}
}
