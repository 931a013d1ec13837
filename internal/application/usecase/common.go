// Package usecase casos de uso de la superficie de administración: entreprises, boutiques,
// usuarios, catálogo de productos y terceros.
package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// owner tenant sobre el que escribe el llamante. El tenant del cuerpo solo cuenta para el
// operador de plataforma; cualquier otro escribe siempre en el suyo.
func owner(sc entity.SecurityContext, requested string) (string, error) {
	if sc.IsPlatformAdmin() {
		if requested == "" {
			return "", domain.NewValidation(map[string]string{"entreprise": "requerido para el operador de plataforma"})
		}
		return requested, nil
	}
	if sc.TenantID == "" {
		return "", domain.ErrForbidden
	}
	return sc.TenantID, nil
}

// present trata el string vacío (o solo espacios) como ausente.
func present(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

func invalidate(ctx context.Context, cache ports.CacheInvalidator, log zerolog.Logger, tenantID string, endpoints ...string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateTenant(ctx, tenantID, endpoints...); err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Msg("invalidación de caché fallida")
	}
}
