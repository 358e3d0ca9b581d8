package api

import (
	"github.com/JaimeStill/warranty/internal/config"
	"github.com/JaimeStill/warranty/internal/warranty"
	"github.com/JaimeStill/warranty/pkg/openapi"
)

// NewSpec builds the OpenAPI document for the API module.
func NewSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(warranty.Spec.Schemas())
	spec.Components.AddResponses(warranty.Spec.Responses())
	for path, item := range warranty.Spec.Paths() {
		spec.Paths[path] = item
	}
	return spec
}

func specJSON(cfg *config.Config) ([]byte, error) {
	return openapi.MarshalJSON(NewSpec(cfg))
}
