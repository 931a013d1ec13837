package entity

import "time"

// LegacyToken credencial opaca (40 hex) usada como "Authorization: Token <key>".
type LegacyToken struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}

// EmailVerification código de 6 dígitos con validez limitada.
type EmailVerification struct {
	UserID    int64
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// ContactMessage mensaje del formulario público de contacto.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}
