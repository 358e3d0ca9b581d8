// Package mail sends Envelopes through a transactional email provider.
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Sender delivers envelopes.
type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

// New creates the sender selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (Sender, error) {
	logger = logger.With("system", "mail", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderSendGrid, "":
		return newSendGrid(cfg, logger), nil
	case ProviderLog:
		return &logSender{logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// Sender returns the configured From address.
func (c *Config) Sender() Address {
	return Address{Name: c.FromName, Email: c.From}
}

type logSender struct {
	logger *slog.Logger
}

func (s *logSender) Send(ctx context.Context, env Envelope) error {
	if len(env.To) == 0 {
		return ErrNoRecipients
	}

	attachments := make([]string, 0, len(env.Attachments))
	for _, a := range env.Attachments {
		attachments = append(attachments, fmt.Sprintf("%s (%d bytes)", a.Filename, len(a.Content)))
	}

	s.logger.InfoContext(ctx, "mail",
		"from", env.From.Email,
		"to", emails(env.To),
		"cc", emails(env.CC),
		"subject", env.Subject,
		"attachments", attachments,
	)
	return nil
}

func emails(addrs []Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Email)
	}
	return out
}
