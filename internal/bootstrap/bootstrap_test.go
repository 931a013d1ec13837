package bootstrap_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/bootstrap"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	apphttp "github.com/jhoicas/Boutique-api/internal/interfaces/http"
	"github.com/jhoicas/Boutique-api/internal/testutil"
	"github.com/jhoicas/Boutique-api/pkg/config"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

const plansFile = "../../config/plans.yaml"

func memoryConfig() *config.Config {
	return &config.Config{
		App:          config.AppConfig{Env: "test", Name: "boutique-api"},
		DB:           config.DBConfig{Driver: "memory"},
		JWT:          config.JWTConfig{Secret: "bootstrap-test", Expiration: 60, RefreshExpiration: 600, Issuer: "boutique-api"},
		Subscription: config.SubscriptionConfig{PlansFile: plansFile, TrialDays: 14, BillingPeriodDays: 30},
	}
}

func TestBuild_MemoriaSirvePlanesPublicos(t *testing.T) {
	svc, err := bootstrap.Build(context.Background(), memoryConfig(), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.Len(t, svc.Router.Manager.Catalog().ListActive(), 4)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(svc.Router.Log)})
	apphttp.Router(app, svc.Router)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/subscription-plans", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestBuild_SinSecretoJWTFalla(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWT.Secret = ""
	_, err := bootstrap.Build(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestBuild_ArchivoDePlanesInexistente(t *testing.T) {
	cfg := memoryConfig()
	cfg.Subscription.PlansFile = "no-existe.yaml"
	_, err := bootstrap.Build(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

// El catálogo distribuido coincide con el de los tests de aplicación.
func TestPlansFile_CoincideConElCatalogoDeReferencia(t *testing.T) {
	plans, err := subscription.LoadPlansFile(plansFile)
	require.NoError(t, err)
	got := subscription.NewCatalog(plans)

	for _, want := range testutil.Plans() {
		p, ok := got.Get(want.Name)
		require.True(t, ok, want.Name)
		assert.True(t, want.MonthlyPrice.Equal(p.MonthlyPrice), want.Name)
		for _, r := range quota.Resources {
			assert.Equal(t, want.Limits.For(r), p.Limits.For(r), "%s %s", want.Name, r)
		}
		for _, f := range quota.Features {
			assert.Equal(t, want.Features.Enabled(f), p.Features.Enabled(f), "%s %s", want.Name, f)
		}
	}
}
