package api

import (
	"net/http"

	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/internal/warranty"
	"github.com/JaimeStill/warranty/pkg/openapi"
	"github.com/JaimeStill/warranty/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	spec, err := specJSON(cfg)
	if err != nil {
		return err
	}

	handler := domain.Warranty.Handler(warranty.HandlerOptions{
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		Base64Body:    cfg.API.Base64Body,
	})

	routes.Register(
		mux,
		handler.Routes(),
		routes.Group{
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/openapi.json", Handler: openapi.ServeSpec(spec)},
			},
		},
	)
	return nil
}
