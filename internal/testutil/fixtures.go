// Package testutil arma un entorno en memoria con planes, tenants y usuarios para los tests
// de la capa de aplicación.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/memory"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

// Now reloj fijo de los tests: 14 de octubre de 2025.
var Now = time.Date(2025, 10, 14, 10, 30, 0, 0, time.UTC)

func lim(n int64) quota.Limit { return quota.Of(n) }

// Plans catálogo de referencia: free, basic, premium y org.
func Plans() []*entity.Plan {
	return []*entity.Plan{
		{
			Name: entity.PlanFree, Display: "Gratuit", SortOrder: 1, Active: true,
			MonthlyPrice: decimal.Zero, YearlyPrice: decimal.Zero,
			Limits: quota.Limits{
				quota.ResourceWarehouses: lim(1), quota.ResourceUsers: lim(2), quota.ResourceProducts: lim(100),
				quota.ResourceInvoices: lim(50), quota.ResourceInventories: lim(2), quota.ResourceTransfers: lim(0),
			},
			Features: quota.Flags{quota.FeatureInventory: true},
		},
		{
			Name: entity.PlanBasic, Display: "Basique", SortOrder: 2, Active: true,
			MonthlyPrice: decimal.NewFromInt(29), YearlyPrice: decimal.NewFromInt(290),
			Limits: quota.Limits{
				quota.ResourceWarehouses: lim(3), quota.ResourceUsers: lim(5), quota.ResourceProducts: lim(1000),
				quota.ResourceInvoices: lim(500), quota.ResourceInventories: lim(10), quota.ResourceTransfers: lim(50),
			},
			Features: quota.Flags{
				quota.FeatureInventory: true, quota.FeatureTransfers: true, quota.FeatureBarcode: true,
				quota.FeaturePartners: true, quota.FeatureExportCSV: true, quota.FeatureImportCSV: true,
			},
		},
		{
			Name: entity.PlanPremium, Display: "Prémium", SortOrder: 3, Active: true,
			MonthlyPrice: decimal.NewFromInt(79), YearlyPrice: decimal.NewFromInt(790),
			Limits: quota.Limits{
				quota.ResourceWarehouses: lim(10), quota.ResourceUsers: lim(20), quota.ResourceProducts: quota.Unlimited(),
				quota.ResourceInvoices: quota.Unlimited(), quota.ResourceInventories: quota.Unlimited(),
				quota.ResourceTransfers: quota.Unlimited(),
			},
			Features: quota.Flags{
				quota.FeatureInventory: true, quota.FeatureTransfers: true, quota.FeatureBarcode: true,
				quota.FeaturePartners: true, quota.FeatureExportCSV: true, quota.FeatureExportExcel: true,
				quota.FeatureImportCSV: true, quota.FeatureAnalytics: true,
			},
		},
		{
			Name: entity.PlanOrg, Display: "Entreprise", SortOrder: 4, Active: true,
			MonthlyPrice: decimal.NewFromInt(199), YearlyPrice: decimal.NewFromInt(1990),
			Limits:   quota.Limits{},
			Features: allFeatures(),
		},
	}
}

func allFeatures() quota.Flags {
	f := quota.Flags{}
	for _, x := range quota.Features {
		f[x] = true
	}
	return f
}

// Env entorno completo sobre el store en memoria.
type Env struct {
	Store   *memory.Store
	Catalog *subscription.Catalog
	Tracker *subscription.Tracker
	Guard   *subscription.Guard
	Manager *subscription.Manager
	Log     *logger.Logger
	Clock   func() time.Time
}

// NewEnv crea el store, siembra los planes y construye el ciclo de suscripción.
func NewEnv(t testing.TB) *Env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(5 * time.Second)
	require.NoError(t, subscription.Seed(ctx, store, Plans()))
	catalog, err := subscription.LoadCatalog(ctx, store.Plans())
	require.NoError(t, err)
	clock := func() time.Time { return Now }
	log := logger.Nop()
	tracker := subscription.NewTracker(clock)
	guard := subscription.NewGuard(catalog, tracker, ports.NopMetrics{}, log.Zerolog())
	manager := subscription.NewManager(store, catalog, tracker, guard, ports.NopInvalidator{}, log.Zerolog(),
		subscription.Options{TrialDays: 14, BillingPeriodDays: 30})
	return &Env{Store: store, Catalog: catalog, Tracker: tracker, Guard: guard, Manager: manager, Log: log, Clock: clock}
}

func (e *Env) tx(t testing.TB, fn func(ctx context.Context, uow repository.UnitOfWork) error) {
	t.Helper()
	require.NoError(t, e.Store.RunInTx(context.Background(), fn))
}

// Tenant crea un tenant con suscripción Free en prueba.
func (e *Env) Tenant(t testing.TB, id, name string) *entity.Tenant {
	t.Helper()
	tn := &entity.Tenant{ID: id, Name: name, Email: "contact@" + id + ".test", Active: true}
	e.tx(t, func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Tenants().Create(ctx, tn); err != nil {
			return err
		}
		_, err := e.Manager.EnsureInTx(ctx, uow, id)
		return err
	})
	return tn
}

// SetPlan fija el plan del tenant sin pasar por las reglas de upgrade.
func (e *Env) SetPlan(t testing.TB, tenantID, plan string) {
	t.Helper()
	p, ok := e.Catalog.Get(plan)
	require.True(t, ok, "plan %s", plan)
	e.tx(t, func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := uow.Subscriptions().GetForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}
		s.PlanID = p.ID
		s.Status = entity.SubscriptionActive
		s.EndAt = nil
		return uow.Subscriptions().Update(ctx, s)
	})
}

// Warehouse crea una boutique activa.
func (e *Env) Warehouse(t testing.TB, tenantID, name string) *entity.Warehouse {
	t.Helper()
	w := &entity.Warehouse{TenantID: tenantID, Name: name, Active: true}
	e.tx(t, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Warehouses().Create(ctx, w)
	})
	return w
}

// User crea un usuario activo con email <username>@mail.test.
func (e *Env) User(t testing.TB, tenantID, username, role string, warehouseID *int64) *entity.User {
	t.Helper()
	u := &entity.User{
		Username: username, Email: username + "@mail.test", Role: role, TenantID: tenantID,
		WarehouseID: warehouseID, Active: true, FirstName: username,
	}
	e.tx(t, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Users().Create(ctx, u)
	})
	return u
}

// Product crea un producto con precios enteros.
func (e *Env) Product(t testing.TB, tenantID, sku string, purchase, sale int64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		TenantID: tenantID, SKU: sku, Name: "Produit " + sku, Active: true, State: entity.ProductStateNew,
		PurchasePrice: decimal.NewFromInt(purchase), SalePrice: decimal.NewFromInt(sale), Currency: "EUR",
	}
	e.tx(t, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Products().Create(ctx, p)
	})
	return p
}

// Stock fija la cantidad de una celda y recalcula el total del producto.
func (e *Env) Stock(t testing.TB, productID, warehouseID, qty int64) {
	t.Helper()
	e.tx(t, func(ctx context.Context, uow repository.UnitOfWork) error {
		row, err := uow.Stocks().LockOrCreate(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		row.Quantity = qty
		if err := uow.Stocks().Save(ctx, row); err != nil {
			return err
		}
		_, err = uow.Products().RecomputeTotal(ctx, productID)
		return err
	})
}

// Ctx contexto de seguridad de un usuario.
func Ctx(u *entity.User) entity.SecurityContext {
	return entity.ContextFromUser(u)
}

// Platform contexto del operador de plataforma.
func Platform() entity.SecurityContext {
	return entity.SecurityContext{UserID: 999, Username: "root", Role: entity.RoleSuperadmin, Authenticated: true}
}
