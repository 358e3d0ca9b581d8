package warranty

import "github.com/JaimeStill/warranty/pkg/openapi"

// Spec describes the warranty endpoints for the OpenAPI document.
var Spec = spec{}

type spec struct{}

// Schemas returns the component schemas used by the warranty endpoints.
func (spec) Schemas() map[string]*openapi.Schema {
	claim := &openapi.Schema{
		Type:       "object",
		Properties: make(map[string]*openapi.Schema, len(Fields)+len(Slots)),
	}
	for _, f := range Fields {
		claim.Properties[f] = &openapi.Schema{Type: "string"}
	}
	claim.Properties[FieldFecha].Format = "date"
	claim.Properties[FieldEmail].Description = "Submitter address, copied on the notification when it contains @."
	for _, s := range Slots {
		claim.Properties[s] = &openapi.Schema{
			Type:        "string",
			Format:      "binary",
			Description: "JPEG or PNG photo. Other types are accepted but not embedded.",
		}
	}

	return map[string]*openapi.Schema{
		"WarrantyClaim": claim,
		"WarrantyResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"message": {Type: "string", Example: SuccessMessage},
			},
			Required: []string{"success", "message"},
		},
	}
}

// Responses returns the component responses shared by the warranty endpoints.
func (spec) Responses() map[string]*openapi.Response {
	return map[string]*openapi.Response{
		"ClaimFailed": openapi.ResponseJSON("Claim failed at any stage", "WarrantyResult"),
	}
}

// Paths returns the path items keyed by their path beneath the API base.
func (spec) Paths() map[string]*openapi.PathItem {
	return map[string]*openapi.PathItem{
		"/warranty": {
			Post: &openapi.Operation{
				Summary:     "Submit a warranty claim",
				Description: "Composes the claim report as a single-page PDF and emails it to the warranty desk.",
				Tags:        []string{"warranty"},
				RequestBody: openapi.RequestBodyMultipart("WarrantyClaim"),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Claim dispatched", "WarrantyResult"),
					500: openapi.ResponseRef("ClaimFailed"),
				},
			},
		},
	}
}
