package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// LegacyTokenRepository tokens opacos (tabla auth_tokens).
type LegacyTokenRepository interface {
	Create(ctx context.Context, t *entity.LegacyToken) error
	Get(ctx context.Context, key string) (*entity.LegacyToken, error)
}

// EmailVerificationRepository códigos de verificación de correo.
type EmailVerificationRepository interface {
	Upsert(ctx context.Context, v *entity.EmailVerification) error
	Get(ctx context.Context, userID int64) (*entity.EmailVerification, error)
	MarkUsed(ctx context.Context, userID int64) error
}

// ContactRepository mensajes del formulario público.
type ContactRepository interface {
	Create(ctx context.Context, m *entity.ContactMessage) error
}
