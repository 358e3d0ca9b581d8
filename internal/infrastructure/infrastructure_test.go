package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/warranty/internal/infrastructure"
)

func TestNewLogger(t *testing.T) {
	var local bytes.Buffer
	infrastructure.NewLogger(&local, "local").Debug("probe", "key", "value")
	if !strings.Contains(local.String(), "key=value") {
		t.Errorf("local logger should emit debug text, got %q", local.String())
	}

	var prod bytes.Buffer
	logger := infrastructure.NewLogger(&prod, "production")
	logger.Debug("hidden")
	logger.Info("claim", "stage", "parsing")

	if strings.Contains(prod.String(), "hidden") {
		t.Error("non-local logger should drop debug records")
	}
	var record map[string]any
	if err := json.Unmarshal(prod.Bytes(), &record); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", prod.String(), err)
	}
	if record["stage"] != "parsing" {
		t.Errorf("stage: got %v", record["stage"])
	}
}
