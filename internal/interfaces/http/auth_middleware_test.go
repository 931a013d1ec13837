package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	apphttp "github.com/jhoicas/Boutique-api/internal/interfaces/http"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeResolver acepta "Bearer <rol>" y devuelve un contexto con ese rol en el tenant ENT0000001.
type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, header string) (entity.SecurityContext, error) {
	switch header {
	case "Bearer admin", "Bearer user", "Bearer superadmin":
		return entity.SecurityContext{
			UserID: 7, TenantID: "ENT0000001", Role: header[len("Bearer "):], Authenticated: true,
		}, nil
	case "Bearer platform":
		return entity.SecurityContext{UserID: 1, Role: entity.RoleSuperadmin, Authenticated: true}, nil
	case "Bearer sinrol":
		return entity.SecurityContext{UserID: 8, TenantID: "ENT0000001", Authenticated: true}, nil
	}
	return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "token inválido o expirado")
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para resolver la credencial
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	log := logger.Nop().Zerolog()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Get("/protected",
		apphttp.AuthMiddleware(fakeResolver{}, log),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "/protected", "Bearer admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin debe poder acceder a ruta restringida a admin")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
}

func TestRequireRole_SuperadminPasaCualquierRestriccion(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "/protected", "Bearer superadmin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_UserBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "/protected", "Bearer user")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_SinRolesSoloSuperadmin(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "/protected", "Bearer admin")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireRole_ContextoSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "/protected", "Bearer sinrol")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "UNAUTHENTICATED")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "/protected", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_GuardaContexto(t *testing.T) {
	log := logger.Nop().Zerolog()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Get("/me", apphttp.AuthMiddleware(fakeResolver{}, log), func(c *fiber.Ctx) error {
		sc := apphttp.Security(c)
		return c.JSON(fiber.Map{"user_id": sc.UserID, "tenant": apphttp.GetTenantID(c), "role": apphttp.GetRole(c)})
	})

	resp := doRequest(t, app, "/me", "Bearer admin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 7, body["user_id"])
	assert.Equal(t, "ENT0000001", body["tenant"])
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireFeature
// ──────────────────────────────────────────────────────────────────────────────

func featureApp(check apphttp.FeatureChecker) *fiber.App {
	log := logger.Nop().Zerolog()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Get("/protected",
		apphttp.AuthMiddleware(fakeResolver{}, log),
		apphttp.RequireFeature(quota.FeatureTransfers, check),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireFeature_Activa(t *testing.T) {
	app := featureApp(func(context.Context, string, quota.Feature) (bool, error) { return true, nil })
	resp := doRequest(t, app, "/protected", "Bearer user")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireFeature_Desactivada_Retorna403(t *testing.T) {
	var gotTenant string
	app := featureApp(func(_ context.Context, tenant string, _ quota.Feature) (bool, error) {
		gotTenant = tenant
		return false, nil
	})
	resp := doRequest(t, app, "/protected", "Bearer admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ENT0000001", gotTenant)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FEATURE_UNAVAILABLE")
	assert.Contains(t, string(body), "transfers")
}

func TestRequireFeature_FalloDeConsulta_Retorna503(t *testing.T) {
	app := featureApp(func(context.Context, string, quota.Feature) (bool, error) {
		return false, domain.ErrTransient
	})
	resp := doRequest(t, app, "/protected", "Bearer admin")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequireFeature_OperadorDePlataformaPasa(t *testing.T) {
	called := false
	app := featureApp(func(context.Context, string, quota.Feature) (bool, error) {
		called = true
		return false, nil
	})
	resp := doRequest(t, app, "/protected", "Bearer platform")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, called)
}
