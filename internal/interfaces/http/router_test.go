package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/auth"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/cache"
	apphttp "github.com/jhoicas/Boutique-api/internal/interfaces/http"
	"github.com/jhoicas/Boutique-api/internal/testutil"
	"github.com/jhoicas/Boutique-api/pkg/jwt"
)

type apiFixture struct {
	app    *fiber.App
	tokens *jwt.Issuer
	admin  *entity.User
	free   *entity.User
	shop   *entity.Warehouse
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	env := testutil.NewEnv(t)
	log := env.Log.Zerolog()

	env.Tenant(t, "ENT0000001", "Maison Lila")
	env.SetPlan(t, "ENT0000001", entity.PlanBasic)
	shop := env.Warehouse(t, "ENT0000001", "Lila Lyon")
	admin := env.User(t, "ENT0000001", "lila", entity.RoleAdmin, nil)

	env.Tenant(t, "ENT0000002", "Atelier Rose")
	free := env.User(t, "ENT0000002", "rose", entity.RoleAdmin, nil)

	tokens, err := jwt.NewIssuer("router-test-secret", "boutique-api-test", 60, 600)
	require.NoError(t, err)
	authSvc, err := auth.NewService(env.Store, tokens, log)
	require.NoError(t, err)

	responses := cache.NewMemoryCache()
	ledger := inventory.NewLedger(env.Store, env.Guard, responses, ports.NopMetrics{}, log, env.Clock)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		Store:      env.Store,
		Auth:       authSvc,
		Warehouses: usecase.NewWarehouseUseCase(env.Store, env.Guard, responses, log, env.Clock),
		Ledger:     ledger,
		Manager:    env.Manager,
		Guard:      env.Guard,
		Cache:      responses,
		AppName:    "boutique-api",
		Log:        log,
	})
	return &apiFixture{app: app, tokens: tokens, admin: admin, free: free, shop: shop}
}

func (f *apiFixture) bearer(t *testing.T, u *entity.User) string {
	t.Helper()
	tok, err := f.tokens.Access(jwt.Subject{UserID: u.ID, TenantID: u.TenantID, WarehouseID: u.WarehouseID, Role: u.Role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *apiFixture) do(t *testing.T, method, path, auth, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// ─── Superficie pública ──────────────────────────────────────────────────────

func TestRouter_Health(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestRouter_PlanesPublicos(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/subscription-plans", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var plans []map[string]any
	require.NoError(t, json.Unmarshal(body, &plans))
	assert.Len(t, plans, 4)
}

func TestRouter_RutaProtegidaSinCredencial(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/boutiques", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "UNAUTHENTICATED")
}

func TestRouter_RefreshNoSirveComoAccess(t *testing.T) {
	f := newAPI(t)
	tok, err := f.tokens.Refresh(jwt.Subject{UserID: f.admin.ID, TenantID: f.admin.TenantID, Role: f.admin.Role})
	require.NoError(t, err)
	resp, _ := f.do(t, http.MethodGet, "/api/boutiques", "Bearer "+tok, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── Boutiques y caché de respuestas ─────────────────────────────────────────

func TestRouter_ListadoCacheadoEInvalidadoAlCrear(t *testing.T) {
	f := newAPI(t)
	auth := f.bearer(t, f.admin)

	resp, body := f.do(t, http.MethodGet, "/api/boutiques", auth, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "MISS", resp.Header.Get(apphttp.HeaderCache))
	var env struct {
		Count   int64 `json:"count"`
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.EqualValues(t, 1, env.Count)

	resp, _ = f.do(t, http.MethodGet, "/api/boutiques", auth, "")
	assert.Equal(t, "HIT", resp.Header.Get(apphttp.HeaderCache))

	resp, body = f.do(t, http.MethodPost, "/api/boutiques", auth, `{"name":"Lila Paris","city":"Paris"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodGet, "/api/boutiques", auth, "")
	assert.Equal(t, "MISS", resp.Header.Get(apphttp.HeaderCache))
	require.NoError(t, json.Unmarshal(body, &env))
	assert.EqualValues(t, 2, env.Count)
}

func TestRouter_CacheNoSeComparteEntreTenants(t *testing.T) {
	f := newAPI(t)
	_, _ = f.do(t, http.MethodGet, "/api/boutiques", f.bearer(t, f.admin), "")

	resp, body := f.do(t, http.MethodGet, "/api/boutiques", f.bearer(t, f.free), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get(apphttp.HeaderCache))
	assert.Contains(t, string(body), `"count":0`)
}

func TestRouter_DetalleDeOtroTenantEs404(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/boutiques/"+strconv.FormatInt(f.shop.ID, 10), f.bearer(t, f.free), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestRouter_IDInvalidoEs400(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/boutiques/abc", f.bearer(t, f.admin), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestRouter_CuotaDeBoutiquesEnPlanFree(t *testing.T) {
	f := newAPI(t)
	auth := f.bearer(t, f.free)
	resp, body := f.do(t, http.MethodPost, "/api/boutiques", auth, `{"name":"Rose 1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodPost, "/api/boutiques", auth, `{"name":"Rose 2"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "QUOTA_EXCEEDED")
	assert.Contains(t, string(body), "1/1")
}

// ─── Funcionalidades del plan ────────────────────────────────────────────────

func TestRouter_TransferenciaSinFuncionalidad(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodPost, "/api/mouvements-stock/transfert_stock", f.bearer(t, f.free),
		`{"produit":1,"boutique_source":1,"boutique_destination":2,"quantity":1}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "FEATURE_UNAVAILABLE")
}

func TestRouter_SendNotificationsSoloPlataforma(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, http.MethodPost, "/api/subscriptions/send_notifications", f.bearer(t, f.admin), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
