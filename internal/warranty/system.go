package warranty

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/warranty/pkg/formdata"
)

// System defines the public contract for claim processing.
type System interface {
	Handler(opts HandlerOptions) *Handler

	// Process composes the report for a parsed submission and dispatches it.
	// Errors are *StageError values.
	Process(ctx context.Context, req *formdata.Request) (*Submission, error)
}

// Submission describes a dispatched claim.
type Submission struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Size     int       `json:"size"`
	CC       bool      `json:"cc"`
}
