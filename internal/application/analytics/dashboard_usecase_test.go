package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/analytics"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/testutil"
)

func TestDashboard_RequiereBanderaAnalytics(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "A")
	u := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	uc := analytics.NewDashboardUseCase(env.Store, env.Guard, env.Clock)

	_, err := uc.GetSummary(context.Background(), testutil.Ctx(u), "")
	assert.ErrorIs(t, err, domain.ErrFeatureUnavailable)
}

func TestDashboard_ConteosDelMes(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "A")
	env.SetPlan(t, "TENANT0001", entity.PlanPremium)
	w := env.Warehouse(t, "TENANT0001", "Centre")
	u := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, &w.ID)
	low := env.Product(t, "TENANT0001", "LOW", 1, 2)
	out := env.Product(t, "TENANT0001", "OUT", 1, 2)
	env.Product(t, "TENANT0001", "OK", 1, 2)

	ctx := context.Background()
	require.NoError(t, env.Store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		for _, p := range []*entity.Product{low, out} {
			p.MinStock = 5
			if err := uow.Products().Update(ctx, p); err != nil {
				return err
			}
		}
		invoices := []*entity.Invoice{
			{TenantID: "TENANT0001", WarehouseID: w.ID, Number: "FA1-251001-0001", Kind: entity.InvoiceKindCustomer,
				Total: decimal.NewFromInt(100), Outstanding: decimal.NewFromInt(40), Status: entity.InvoiceStatusPartial,
				CreatedAt: testutil.Now.Add(-24 * time.Hour)},
			{TenantID: "TENANT0001", WarehouseID: w.ID, Number: "FA1-250915-0001", Kind: entity.InvoiceKindCustomer,
				Total: decimal.NewFromInt(50), Outstanding: decimal.NewFromInt(50), Status: entity.InvoiceStatusPending,
				CreatedAt: testutil.Now.AddDate(0, -1, 0)},
		}
		for _, inv := range invoices {
			if err := uow.Invoices().Create(ctx, inv); err != nil {
				return err
			}
		}
		return nil
	}))
	env.Stock(t, low.ID, w.ID, 2)
	env.Stock(t, out.ID, w.ID, 0)

	uc := analytics.NewDashboardUseCase(env.Store, env.Guard, env.Clock)
	res, err := uc.GetSummary(ctx, testutil.Ctx(u), "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.InvoicesThisMonth)
	assert.True(t, res.RevenueThisMonth.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.OutstandingTotal.Equal(decimal.NewFromInt(90)), "el saldo pendiente no se limita al mes")
	assert.Equal(t, 1, res.LowStockRows)
	assert.Equal(t, 1, res.OutOfStockRows)
	assert.EqualValues(t, 3, res.Products)
	assert.Equal(t, "octobre 2025", res.Period)
}
