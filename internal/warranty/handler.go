package warranty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/warranty/pkg/formdata"
	"github.com/JaimeStill/warranty/pkg/handlers"
	"github.com/JaimeStill/warranty/pkg/routes"
)

// HandlerOptions configures request decoding.
type HandlerOptions struct {
	MaxUploadSize int64
	// Base64Body decodes request bodies delivered base64-encoded.
	Base64Body bool
}

// Handler provides the HTTP endpoint for claim submission.
type Handler struct {
	sys    System
	logger *slog.Logger
	opts   HandlerOptions
}

// NewHandler creates a Handler over sys.
func NewHandler(sys System, logger *slog.Logger, opts HandlerOptions) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "warranty"),
		opts:   opts,
	}
}

// Routes returns the route group definition for warranty endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/warranty",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
		},
	}
}

// Submit runs one claim through parsing, composition and dispatch. Every
// failure, including a panic, yields 500 with the failure envelope.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if v := recover(); v != nil {
			h.fail(w, failAt(StageResponded, fmt.Errorf("%w: %v", ErrPanic, v)))
		}
	}()

	h.logger.Debug("claim received", "content_length", r.ContentLength)

	req, err := h.parse(w, r)
	if err != nil {
		h.fail(w, failAt(StageParsing, err))
		return
	}

	sub, err := h.sys.Process(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.logger.Info("claim processed", "submission", sub.ID.String(), "bytes", sub.Size)
	handlers.RespondJSON(w, http.StatusOK, Succeeded())
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (*formdata.Request, error) {
	var body io.Reader = r.Body
	if h.opts.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)
	}
	if h.opts.Base64Body {
		body = formdata.Base64(body)
	}

	req, err := formdata.Parse(r.Context(), body, r.Header.Get("Content-Type"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	return req, nil
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	level := slog.LevelError
	if errors.Is(err, context.Canceled) {
		level = slog.LevelWarn
	}
	h.logger.Log(context.Background(), level, "claim failed", "stage", StageOf(err), "error", err)
	handlers.RespondJSON(w, http.StatusInternalServerError, Failed(err))
}
