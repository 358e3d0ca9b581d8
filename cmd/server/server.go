package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/internal/infrastructure"
)

// Server owns the infrastructure, mounted modules and HTTP listener.
type Server struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

// NewServer builds every subsystem without starting any of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	return &Server{
		cfg:     cfg,
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start opens the listener and blocks until every startup probe has run.
// Requests are accepted meanwhile; /readyz reports 503 until Start returns nil.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	s.infra.Logger.Info(
		"warranty service ready",
		"addr", s.cfg.Server.Addr(),
		"base_path", s.cfg.API.BasePath,
		"version", s.cfg.Version,
		"env", s.cfg.Env(),
		"mail", s.cfg.Mail.Provider,
		"storage", s.cfg.Storage.Provider,
	)
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
