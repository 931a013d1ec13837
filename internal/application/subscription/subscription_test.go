package subscription_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/testutil"
)

// ─── Catálogo ────────────────────────────────────────────────────────────────

func TestCatalog_ResolveIgnoraMayusculasYAcentos(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, ref := range []string{"premium", "PREMIUM", "Prémium", "premium ", "PREMIUM"} {
		p, ok := env.Catalog.Resolve(ref)
		require.True(t, ok, ref)
		assert.Equal(t, entity.PlanPremium, p.Name)
	}
	basic, _ := env.Catalog.Get(entity.PlanBasic)
	p, ok := env.Catalog.Resolve("2")
	require.True(t, ok)
	assert.Equal(t, basic.ID, p.ID)

	_, ok = env.Catalog.Resolve("platine")
	assert.False(t, ok)
}

func TestParsePlans_NormalizaIlimitado(t *testing.T) {
	src := `
plans:
  - name: free
    display: Gratuit
    monthly_price: "0"
    limits:
      max_users: 2
      max_products: 999999
      max_invoices_per_month: null
      warehouses: unlimited
    features:
      inventory: true
`
	plans, err := subscription.ParsePlans(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	p := plans[0]
	assert.Equal(t, int64(2), p.LimitFor(quota.ResourceUsers).Value())
	assert.True(t, p.LimitFor(quota.ResourceProducts).IsUnlimited(), "999999 es ilimitado")
	assert.True(t, p.LimitFor(quota.ResourceInvoices).IsUnlimited())
	assert.True(t, p.LimitFor(quota.ResourceWarehouses).IsUnlimited())
	assert.True(t, p.Features.Enabled(quota.FeatureInventory))
	assert.True(t, p.Active)
}

func TestParsePlans_RecursoDesconocido(t *testing.T) {
	_, err := subscription.ParsePlans(strings.NewReader("plans:\n  - name: x\n    limits:\n      max_cats: 3\n"))
	assert.Error(t, err)
}

// ─── Ciclo de vida ───────────────────────────────────────────────────────────

func TestEnsure_Idempotente(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")

	a, err := env.Manager.Ensure(context.Background(), "TENANT0001")
	require.NoError(t, err)
	b, err := env.Manager.Ensure(context.Background(), "TENANT0001")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	free, _ := env.Catalog.Get(entity.PlanFree)
	assert.Equal(t, free.ID, a.PlanID)
	assert.Equal(t, entity.SubscriptionActive, a.Status)
	require.NotNil(t, a.TrialEndAt)
	assert.Equal(t, testutil.Now.AddDate(0, 0, 14), *a.TrialEndAt)
}

func TestCurrent_DiasDePrueba(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	boss := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)

	cur, err := env.Manager.Current(context.Background(), testutil.Ctx(boss), "")
	require.NoError(t, err)
	assert.Equal(t, entity.PlanFree, cur.Plan.Name)
	require.NotNil(t, cur.TrialDaysLeft)
	assert.Equal(t, 14, *cur.TrialDaysLeft)
	assert.Nil(t, cur.DaysUntilExpiry)
	assert.True(t, cur.Effective)
}

func TestChangePlan_UpgradeExtiendeYNotifica(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	boss := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	ctx := context.Background()

	res, err := env.Manager.ChangePlan(ctx, testutil.Ctx(boss), dto.ChangePlanRequest{Plan: "Basique"}, subscription.DirectionUpgrade)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanFree, res.OldPlan)
	assert.Equal(t, entity.PlanBasic, res.NewPlan)
	require.NotNil(t, res.Subscription.EndAt)
	assert.Equal(t, testutil.Now.AddDate(0, 0, 30), *res.Subscription.EndAt)

	msgs := env.Store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.NotifyPlanChanged, msgs[0].Kind)
	assert.ElementsMatch(t, []string{"boss@mail.test", "contact@TENANT0001.test"}, msgs[0].Recipients)

	entries, total, err := env.Store.Audit().List(ctx, repository.AuditFilter{TenantID: "TENANT0001"}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entity.AuditSubscriptionChange, entries[0].Kind)
}

func TestChangePlan_SentidoContradictorio(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	boss := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	env.SetPlan(t, "TENANT0001", entity.PlanPremium)
	ctx := context.Background()

	_, err := env.Manager.ChangePlan(ctx, testutil.Ctx(boss), dto.ChangePlanRequest{Plan: "basic"}, subscription.DirectionUpgrade)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.Manager.ChangePlan(ctx, testutil.Ctx(boss), dto.ChangePlanRequest{Plan: "org"}, subscription.DirectionDowngrade)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.Manager.ChangePlan(ctx, testutil.Ctx(boss), dto.ChangePlanRequest{Plan: "premium"}, subscription.DirectionAny)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "mismo plan")
	assert.Empty(t, env.Store.Messages(), "sin notificación si no hubo cambio")
}

func TestChangePlan_IdaYVueltaRestauraTopes(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	boss := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	ctx := context.Background()
	sc := testutil.Ctx(boss)

	before, err := env.Manager.Limits(ctx, sc, "")
	require.NoError(t, err)
	_, err = env.Manager.ChangePlan(ctx, sc, dto.ChangePlanRequest{Plan: "premium"}, subscription.DirectionAny)
	require.NoError(t, err)
	_, err = env.Manager.ChangePlan(ctx, sc, dto.ChangePlanRequest{Plan: "free"}, subscription.DirectionAny)
	require.NoError(t, err)
	after, err := env.Manager.Limits(ctx, sc, "")
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Len(t, env.Store.Messages(), 2)
}

func TestChangePlan_SoloSuperadmin(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	admin := env.User(t, "TENANT0001", "gerant", entity.RoleAdmin, nil)

	_, err := env.Manager.ChangePlan(context.Background(), testutil.Ctx(admin), dto.ChangePlanRequest{Plan: "basic"}, subscription.DirectionUpgrade)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExtend_DesdeAhoraSiNoHayFin(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")

	res, err := env.Manager.Extend(context.Background(), testutil.Platform(), dto.ExtendRequest{Days: 10, Entreprise: "TENANT0001"})
	require.NoError(t, err)
	require.NotNil(t, res.EndAt)
	assert.Equal(t, testutil.Now.AddDate(0, 0, 10), *res.EndAt)
	require.NotNil(t, res.DaysUntilExpiry)
	assert.Equal(t, 10, *res.DaysUntilExpiry)

	res, err = env.Manager.Extend(context.Background(), testutil.Platform(), dto.ExtendRequest{Days: 5, Entreprise: "TENANT0001"})
	require.NoError(t, err)
	assert.Equal(t, testutil.Now.AddDate(0, 0, 15), *res.EndAt)
}

func TestPrice_AnualConDescuento(t *testing.T) {
	env := testutil.NewEnv(t)
	basic, _ := env.Catalog.Get(entity.PlanBasic)

	monthly := subscription.Price(&entity.Subscription{BillingPeriod: entity.BillingMonthly}, basic)
	yearly := subscription.Price(&entity.Subscription{BillingPeriod: entity.BillingYearly}, basic)
	assert.Equal(t, "29", monthly.String())
	assert.Equal(t, "261", yearly.String())
}

// ─── Guard ───────────────────────────────────────────────────────────────────

func TestGuard_PlanVencidoUsaFree(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.SetPlan(t, "TENANT0001", entity.PlanPremium)
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		s, _ := uow.Subscriptions().GetForUpdate(ctx, "TENANT0001")
		past := testutil.Now.Add(-time.Hour)
		s.EndAt = &past
		return uow.Subscriptions().Update(ctx, s)
	}))

	plan, _, err := env.Guard.EffectivePlan(context.Background(), env.Store, "TENANT0001")
	require.NoError(t, err)
	assert.Equal(t, entity.PlanFree, plan.Name)

	n, err := env.Manager.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGuard_UsuariosAlLimite(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.User(t, "TENANT0001", "u1", entity.RoleSuperadmin, nil)
	env.User(t, "TENANT0001", "u2", entity.RoleUser, nil)

	err := env.Guard.Admit(context.Background(), env.Store, "TENANT0001",
		quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceUsers})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "2/2")

	err = env.Guard.Admit(context.Background(), env.Store, "TENANT0001",
		quota.Action{Verb: quota.VerbDelete, Resource: quota.ResourceUsers})
	assert.NoError(t, err, "los borrados no se limitan")
}

// lockRecorder registra las lecturas FOR UPDATE de la suscripción.
type lockRecorder struct {
	repository.UnitOfWork
	subs *lockedSubs
}

type lockedSubs struct {
	repository.SubscriptionRepository
	locks int
}

func (l *lockRecorder) Subscriptions() repository.SubscriptionRepository { return l.subs }

func (s *lockedSubs) GetForUpdate(ctx context.Context, tenantID string) (*entity.Subscription, error) {
	s.locks++
	return s.SubscriptionRepository.GetForUpdate(ctx, tenantID)
}

func TestGuard_CreateBloqueaSuscripcion(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	uow := &lockRecorder{UnitOfWork: env.Store, subs: &lockedSubs{SubscriptionRepository: env.Store.Subscriptions()}}

	require.NoError(t, env.Guard.Admit(context.Background(), uow, "TENANT0001",
		quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceWarehouses}))
	assert.Equal(t, 1, uow.subs.locks)

	require.NoError(t, env.Guard.Admit(context.Background(), uow, "TENANT0001",
		quota.Action{Verb: quota.VerbRead, Resource: quota.ResourceWarehouses}))
	require.NoError(t, env.Guard.Admit(context.Background(), uow, "TENANT0001",
		quota.Action{Verb: quota.VerbCreate, Feature: quota.FeatureInventory}))
	assert.Equal(t, 1, uow.subs.locks, "lecturas y banderas no bloquean")
}

func TestGuard_AltasConcurrentesEnElTope(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A") // free: una boutique

	const n = 4
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
				if err := env.Guard.Admit(ctx, uow, "TENANT0001", quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceWarehouses}); err != nil {
					return err
				}
				return uow.Warehouses().Create(ctx, &entity.Warehouse{TenantID: "TENANT0001", Name: fmt.Sprintf("B%d", i), Active: true})
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, denied int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrQuotaExceeded):
			denied++
		default:
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, denied)
}

func TestGuard_FuncionalidadDesactivada(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")

	err := env.Guard.Admit(context.Background(), env.Store, "TENANT0001",
		quota.Action{Verb: quota.VerbCreate, Feature: quota.FeatureTransfers})
	assert.ErrorIs(t, err, domain.ErrFeatureUnavailable)
}

// ─── Uso ─────────────────────────────────────────────────────────────────────

func TestTracker_RolloverIdempotente(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	ctx := context.Background()

	require.NoError(t, env.Store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return env.Tracker.Increment(ctx, uow, "TENANT0001", quota.ResourceInvoices)
	}))
	a, err := env.Tracker.Rollover(ctx, env.Store, "TENANT0001", testutil.Now)
	require.NoError(t, err)
	b, err := env.Tracker.Rollover(ctx, env.Store, "TENANT0001", testutil.Now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, a.InvoicesThisPeriod, b.InvoicesThisPeriod)
	assert.Equal(t, int64(1), b.InvoicesThisPeriod)

	next, err := env.Tracker.Rollover(ctx, env.Store, "TENANT0001", time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(0), next.InvoicesThisPeriod, "nuevo mes a cero")
	assert.Equal(t, int64(1), next.InvoicesTotal, "el acumulado persiste")
}

func TestUsage_Snapshot(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	boss := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	env.Warehouse(t, "TENANT0001", "Centre")
	env.Product(t, "TENANT0001", "SKU-1", 10, 20)

	u, err := env.Manager.Usage(context.Background(), testutil.Ctx(boss), "")
	require.NoError(t, err)
	byRes := map[string]dto.LimitStatus{}
	for _, r := range u.Resources {
		byRes[r.Resource] = r
	}
	assert.Equal(t, int64(1), byRes[string(quota.ResourceUsers)].Current)
	assert.Equal(t, int64(1), byRes[string(quota.ResourceWarehouses)].Current)
	assert.False(t, byRes[string(quota.ResourceWarehouses)].Allowed, "Free admite una sola boutique")
	assert.Equal(t, int64(1), byRes[string(quota.ResourceProducts)].Current)
}
