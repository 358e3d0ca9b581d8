package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/warranty/internal/warranty"
)

// UnknownServerError is shown when a failed response carries no message.
const UnknownServerError = "Error desconocido en el servidor."

// Form is the claim as entered: scalar fields plus selected photos.
type Form struct {
	Fields map[string]string
	Photos []Photo
}

// SubmitError is the single failure type of a submission attempt. Message
// is suitable for display as is.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// ClientConfig parameterizes a Client.
type ClientConfig struct {
	Endpoint string
	Timeout  time.Duration
	// Compress enables photo compression before upload.
	Compress    bool
	Compression CompressOptions
}

// Client submits claims and keeps the draft and form state in step with
// the outcome.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	draft   *Draft
	machine *Machine
	logger  *slog.Logger
}

// NewClient creates a Client. A nil machine gets a fresh one.
func NewClient(cfg ClientConfig, draft *Draft, machine *Machine, logger *slog.Logger) *Client {
	if machine == nil {
		machine = NewMachine()
	}
	if cfg.Compression == (CompressOptions{}) {
		cfg.Compression = DefaultCompressOptions()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		draft:   draft,
		machine: machine,
		logger:  logger.With("system", "client"),
	}
}

// Machine returns the client's state machine.
func (c *Client) Machine() *Machine {
	return c.machine
}

// Submit sends form. On success the draft is cleared and the state becomes
// Confirmed. On failure the draft is kept, the state becomes Failed and a
// *SubmitError is returned.
func (c *Client) Submit(ctx context.Context, form Form) (*warranty.Result, error) {
	if err := c.machine.Fire(Submit); err != nil {
		return nil, err
	}

	result, err := c.submit(ctx, form)
	if err != nil {
		c.logger.Warn("submission failed", "error", err)
		c.machine.Fire(Fail)
		return nil, err
	}

	c.draft.Clear()
	c.machine.Fire(Succeed)
	return result, nil
}

// Reset returns the form to Editing and clears the draft. The draft is kept
// when the transition is refused.
func (c *Client) Reset() error {
	if err := c.machine.Fire(Reset); err != nil {
		return err
	}
	c.draft.Clear()
	return nil
}

func (c *Client) submit(ctx context.Context, form Form) (*warranty.Result, error) {
	photos := form.Photos
	if c.cfg.Compress && len(photos) > 0 {
		compressed, err := CompressAll(ctx, photos, c.cfg.Compression)
		if err != nil {
			return nil, &SubmitError{Message: err.Error(), Err: err}
		}
		photos = compressed
	}

	body, contentType, err := encode(form.Fields, photos)
	if err != nil {
		return nil, &SubmitError{Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return nil, &SubmitError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SubmitError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SubmitError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	var result warranty.Result
	decodeErr := json.Unmarshal(data, &result)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || decodeErr != nil || !result.Success {
		msg := result.Message
		if msg == "" {
			msg = UnknownServerError
		}
		return nil, &SubmitError{Status: resp.StatusCode, Message: msg, Err: decodeErr}
	}

	c.logger.Info("submission confirmed", "status", resp.StatusCode, "photos", len(photos))
	return &result, nil
}

// encode writes claim fields in form order, then any other fields sorted by
// name, then each photo with its original filename.
func encode(fields map[string]string, photos []Photo) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, name := range fieldOrder(fields) {
		if err := w.WriteField(name, fields[name]); err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", name, err)
		}
	}

	for _, p := range photos {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.Slot), escapeQuotes(p.Filename)))
		contentType := p.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(p.Data)
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("encode photo %s: %w", p.Slot, err)
		}
		if _, err := part.Write(p.Data); err != nil {
			return nil, "", fmt.Errorf("encode photo %s: %w", p.Slot, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func fieldOrder(fields map[string]string) []string {
	order := make([]string, 0, len(fields))
	for _, name := range warranty.Fields {
		if _, ok := fields[name]; ok {
			order = append(order, name)
		}
	}

	var extra []string
	for name := range fields {
		if !slices.Contains(warranty.Fields, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
