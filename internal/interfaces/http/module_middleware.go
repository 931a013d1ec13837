package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
)

// FeatureChecker contrato mínimo para verificar una bandera del plan efectivo del tenant.
type FeatureChecker func(ctx context.Context, tenantID string, f quota.Feature) (bool, error)

// RequireFeature verifica que el plan del tenant del token incluya la funcionalidad.
// Debe usarse DESPUÉS de AuthMiddleware. El operador de plataforma no tiene plan y pasa.
//
//   - 403 FEATURE_UNAVAILABLE → funcionalidad no incluida o plan vencido (límites Free).
//   - 503 FEATURE_CHECK_FAILED → fallo al consultar el plan.
func RequireFeature(feature quota.Feature, check FeatureChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc := Security(c)
		if sc.IsPlatformAdmin() {
			return c.Next()
		}
		if sc.TenantID == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "usuario sin entreprise"})
		}
		ok, err := check(c.UserContext(), sc.TenantID, feature)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "FEATURE_CHECK_FAILED",
				Message: "no se pudo verificar el plan, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FEATURE_UNAVAILABLE",
				Message: "la funcionalidad '" + string(feature) + "' no está disponible en su plan",
				Details: map[string]string{"feature": string(feature)},
			})
		}
		return c.Next()
	}
}
