package mail_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/mail"
)

func TestLogMailer_RegistraElEnvio(t *testing.T) {
	var buf bytes.Buffer
	m := mail.NewLogMailer(zerolog.New(&buf))

	err := m.Send(context.Background(), ports.Mail{
		From: "noreply@boutique.test", To: []string{"a@mail.test"}, CC: []string{"b@mail.test"},
		Subject: "Stock bas", Body: "hola",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"subject":"Stock bas"`)
	assert.Contains(t, buf.String(), `"to":["a@mail.test"]`)
}

func TestLogMailer_SinDestinatarios(t *testing.T) {
	m := mail.NewLogMailer(zerolog.Nop())
	assert.Error(t, m.Send(context.Background(), ports.Mail{Subject: "x"}))
}
