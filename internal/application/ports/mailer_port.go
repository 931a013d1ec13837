package ports

import "context"

// Mail mensaje ya compuesto. La entrega SMTP queda fuera de esta aplicación.
type Mail struct {
	From    string
	To      []string
	CC      []string
	Subject string
	Body    string
}

// Mailer puerto de salida para correo.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}
