package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

type sendGrid struct {
	apiKey  string
	host    string
	timeout time.Duration
	logger  *slog.Logger
}

func newSendGrid(cfg *Config, logger *slog.Logger) *sendGrid {
	return &sendGrid{
		apiKey:  cfg.APIKey,
		host:    cfg.Host,
		timeout: cfg.TimeoutDuration(),
		logger:  logger,
	}
}

func (s *sendGrid) Send(ctx context.Context, env Envelope) error {
	if len(env.To) == 0 {
		return ErrNoRecipients
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := sendgrid.GetRequest(s.apiKey, sendEndpoint, s.host)
	req.Method = "POST"
	req.Body = sgmail.GetRequestBody(message(env))

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(resp.Body))
	}

	s.logger.InfoContext(ctx, "mail sent",
		"status", resp.StatusCode,
		"to", len(env.To),
		"cc", len(env.CC),
	)
	return nil
}

func message(env Envelope) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(env.From.Name, env.From.Email))
	m.Subject = env.Subject

	p := sgmail.NewPersonalization()
	for _, a := range env.To {
		p.AddTos(sgmail.NewEmail(a.Name, a.Email))
	}
	for _, a := range env.CC {
		p.AddCCs(sgmail.NewEmail(a.Name, a.Email))
	}
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/plain", env.Body))

	for _, a := range env.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}

	for k, v := range env.Args {
		m.SetCustomArg(k, v)
	}
	return m
}
