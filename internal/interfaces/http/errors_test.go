package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Boutique-api/internal/domain"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Errorf(domain.ErrUnauthenticated, "x"), fiber.StatusUnauthorized, "UNAUTHENTICATED"},
		{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{domain.NewQuotaExceeded("produits", 100, 100), fiber.StatusForbidden, "QUOTA_EXCEEDED"},
		{domain.NewFeatureUnavailable("transfers"), fiber.StatusForbidden, "FEATURE_UNAVAILABLE"},
		{domain.NewValidation(map[string]string{"sku": "campo obligatorio"}), fiber.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("repo: %w", domain.ErrNotFound), fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
		{domain.NewInsufficientStock(1, 5), fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{domain.ErrCrossTenant, fiber.StatusUnprocessableEntity, "CROSS_TENANT"},
		{domain.NewInvariant("pago mayor al saldo"), fiber.StatusUnprocessableEntity, "INVARIANT_VIOLATION"},
		{domain.ErrTransient, fiber.StatusServiceUnavailable, "TRY_AGAIN"},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, "HTTP_ERROR"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := statusOf(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
