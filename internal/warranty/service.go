package warranty

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/warranty/pkg/document"
	"github.com/JaimeStill/warranty/pkg/formdata"
	"github.com/JaimeStill/warranty/pkg/mail"
	"github.com/JaimeStill/warranty/pkg/storage"
)

// Logos names the asset keys of the report logos. Empty keys are skipped.
type Logos struct {
	Left  string
	Right string
}

type service struct {
	composer *document.Composer
	assets   storage.System
	sender   mail.Sender
	mail     *mail.Config
	logos    Logos
	logger   *slog.Logger
}

// New creates the claim processing system.
func New(
	composer *document.Composer,
	assets storage.System,
	sender mail.Sender,
	mailCfg *mail.Config,
	logos Logos,
	logger *slog.Logger,
) System {
	return &service{
		composer: composer,
		assets:   assets,
		sender:   sender,
		mail:     mailCfg,
		logos:    logos,
		logger:   logger.With("system", "warranty"),
	}
}

func (s *service) Handler(opts HandlerOptions) *Handler {
	return NewHandler(s, s.logger, opts)
}

func (s *service) Process(ctx context.Context, req *formdata.Request) (*Submission, error) {
	id := uuid.New()
	logger := s.logger.With("submission", id.String())

	input := document.Input{
		Fields:    req.Fields,
		Photos:    photos(req),
		LeftLogo:  s.logo(ctx, logger, s.logos.Left),
		RightLogo: s.logo(ctx, logger, s.logos.Right),
	}

	pdf, err := s.composer.Compose(input)
	if err != nil {
		return nil, failAt(StageComposing, err)
	}
	logger.Info("report composed", "photos", len(input.Photos), "bytes", len(pdf))

	env := Notification(s.mail, req.Fields, pdf)
	env.Args["submission"] = id.String()

	if err := s.sender.Send(ctx, env); err != nil {
		return nil, failAt(StageDispatching, err)
	}

	sub := &Submission{
		ID:       id,
		Filename: env.Attachments[0].Filename,
		Size:     len(pdf),
		CC:       len(env.CC) > 0,
	}
	logger.Info("claim dispatched", "filename", sub.Filename, "cc", sub.CC)
	return sub, nil
}

// logo reads an asset best-effort. Any failure leaves the logo out.
func (s *service) logo(ctx context.Context, logger *slog.Logger, key string) []byte {
	if s.assets == nil || strings.TrimSpace(key) == "" {
		return nil
	}

	data, err := s.assets.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Debug("logo not found", "key", key)
		} else {
			logger.Warn("logo unavailable", "key", key, "error", err)
		}
		return nil
	}
	return data
}

// photos selects the accepted slots from the parsed files.
func photos(req *formdata.Request) map[string]document.Image {
	out := make(map[string]document.Image, len(Slots))
	for _, slot := range Slots {
		f, ok := req.File(slot)
		if !ok || len(f.Content) == 0 {
			continue
		}
		out[slot] = document.Image{Data: f.Content, ContentType: f.ContentType}
	}
	return out
}
