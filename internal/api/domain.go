package api

import (
	"fmt"

	"github.com/JaimeStill/warranty/internal/warranty"
	"github.com/JaimeStill/warranty/pkg/document"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Warranty warranty.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	layout, err := runtime.Document.Layout()
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}

	composer, err := document.New(layout, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("init composer: %w", err)
	}

	warrantySystem := warranty.New(
		composer,
		runtime.Storage,
		runtime.Mailer,
		runtime.Mail,
		warranty.Logos{
			Left:  runtime.Document.LeftLogo,
			Right: runtime.Document.RightLogo,
		},
		runtime.Logger,
	)

	return &Domain{
		Warranty: warrantySystem,
	}, nil
}
