package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// LocalSecurityContext clave de c.Locals con el entity.SecurityContext de la petición.
const LocalSecurityContext = "security_context"

// CredentialResolver traduce la cabecera Authorization en contexto. Lo implementa *auth.Service.
type CredentialResolver interface {
	Resolve(ctx context.Context, header string) (entity.SecurityContext, error)
}

// AuthMiddleware exige credenciales válidas (Bearer JWT o Token legado) y guarda el contexto.
func AuthMiddleware(resolver CredentialResolver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return writeError(c, log, domain.Errorf(domain.ErrUnauthenticated, "Authorization header requerido"))
		}
		sc, err := resolver.Resolve(c.UserContext(), header)
		if err != nil {
			return writeError(c, log, err)
		}
		c.Locals(LocalSecurityContext, sc)
		return c.Next()
	}
}

// Security devuelve el contexto de la petición (vacío si no pasó por AuthMiddleware).
func Security(c *fiber.Ctx) entity.SecurityContext {
	sc, _ := c.Locals(LocalSecurityContext).(entity.SecurityContext)
	return sc
}

// GetRole rol del usuario autenticado.
func GetRole(c *fiber.Ctx) string { return Security(c).Role }

// GetTenantID tenant del usuario autenticado ("" para el operador de plataforma).
func GetTenantID(c *fiber.Ctx) string { return Security(c).TenantID }

// RequireRole restringe la ruta a los roles dados. Usar DESPUÉS de AuthMiddleware.
// superadmin pasa cualquier restricción.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		sc := Security(c)
		if !sc.Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "autenticación requerida"})
		}
		if sc.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "usuario sin rol"})
		}
		if sc.Role != entity.RoleSuperadmin && !allowed[sc.Role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol insuficiente para esta operación"})
		}
		return c.Next()
	}
}
