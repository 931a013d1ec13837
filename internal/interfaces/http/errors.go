package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain"
)

// statusOf traduce un error de dominio a (status HTTP, código estable).
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return fiber.StatusForbidden, "QUOTA_EXCEEDED"
	case errors.Is(err, domain.ErrFeatureUnavailable):
		return fiber.StatusForbidden, "FEATURE_UNAVAILABLE"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrCrossTenant):
		return fiber.StatusUnprocessableEntity, "CROSS_TENANT"
	case errors.Is(err, domain.ErrInvariantViolation):
		return fiber.StatusUnprocessableEntity, "INVARIANT_VIOLATION"
	case errors.Is(err, domain.ErrTransient):
		return fiber.StatusServiceUnavailable, "TRY_AGAIN"
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, "HTTP_ERROR"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError escribe {code, message, details}. Los 5xx no exponen el error interno.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := statusOf(err)
	body := dto.ErrorResponse{Code: code, Message: err.Error(), Details: domain.DetailsOf(err)}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("error interno")
		if status == fiber.StatusInternalServerError {
			body.Message = "error interno del servidor"
		}
	} else {
		log.Debug().Err(err).Str("path", c.Path()).Int("status", status).Msg("petición rechazada")
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler manejador global de fiber: todo error devuelto por un handler pasa por aquí.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, log, err)
	}
}
