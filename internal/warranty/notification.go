package warranty

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/warranty/pkg/mail"
)

const attachmentType = "application/pdf"

// Filename returns the attachment name for a claim. Names are not unique:
// two claims from the same client on the same date collide.
func Filename(cliente, fecha string) string {
	return fmt.Sprintf("Garantia_Upower_%s_%s.pdf", strings.Join(strings.Fields(cliente), "_"), fecha)
}

// Subject returns the notification subject line.
func Subject(cliente string) string {
	return "Nueva Garantía U-Power de: " + cliente
}

// Body returns the plain-text notification body.
func Body(cliente, contacto string) string {
	return fmt.Sprintf(
		"Se ha recibido una nueva solicitud de garantía. Los detalles están en el PDF adjunto.\n\nCliente: %s\nContacto: %s",
		cliente,
		contacto,
	)
}

// Notification builds the outbound envelope for a composed report. The
// submitter is copied when the email field contains "@".
func Notification(cfg *mail.Config, fields map[string]string, pdf []byte) mail.Envelope {
	cliente := fields[FieldCliente]

	env := mail.Envelope{
		From:    cfg.Sender(),
		To:      mail.Recipients(cfg.To...),
		Subject: Subject(cliente),
		Body:    Body(cliente, fields[FieldContacto]),
		Attachments: []mail.Attachment{{
			Filename:    Filename(cliente, fields[FieldFecha]),
			ContentType: attachmentType,
			Content:     pdf,
		}},
		Args: map[string]string{},
	}
	env.AddCC(fields[FieldEmail])
	return env
}
