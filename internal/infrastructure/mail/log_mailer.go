// Package mail sumideros de correo. La entrega SMTP real queda fuera de la aplicación:
// el mailer de log deja constancia de cada envío para que un relay externo lo procese.
package mail

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
)

var _ ports.Mailer = (*LogMailer)(nil)

// LogMailer registra el correo con zerolog.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.Mail) error {
	if len(msg.To) == 0 {
		return errors.New("mail: sin destinatarios")
	}
	m.log.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Strs("cc", msg.CC).
		Str("subject", msg.Subject).
		Int("body_len", len(msg.Body)).
		Msg("correo enviado")
	return nil
}
