package inventory_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/testutil"
)

type fixture struct {
	env    *testutil.Env
	ledger *inventory.Ledger
	boss   *entity.User
	admin  *entity.User
	w1, w2 *entity.Warehouse
	p      *entity.Product
}

// newFixture: tenant en plan basic con dos boutiques y un producto; stock (p,w1)=10 y (p,w2)=5.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	w1 := env.Warehouse(t, "TENANT0001", "Centre")
	w2 := env.Warehouse(t, "TENANT0001", "Nord Est")
	boss := env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	admin := env.User(t, "TENANT0001", "gerant1", entity.RoleAdmin, &w1.ID)
	env.User(t, "TENANT0001", "gerant2", entity.RoleAdmin, &w2.ID)
	p := env.Product(t, "TENANT0001", "SKU-1", 10, 20)
	env.Stock(t, p.ID, w1.ID, 10)
	env.Stock(t, p.ID, w2.ID, 5)
	ledger := inventory.NewLedger(env.Store, env.Guard, ports.NopInvalidator{}, ports.NopMetrics{}, env.Log.Zerolog(), env.Clock)
	return &fixture{env: env, ledger: ledger, boss: boss, admin: admin, w1: w1, w2: w2, p: p}
}

func (f *fixture) row(t *testing.T, w int64) *entity.StockRow {
	t.Helper()
	r, err := f.env.Store.Stocks().Get(context.Background(), f.p.ID, w)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func (f *fixture) movements(t *testing.T) []*entity.StockMovement {
	t.Helper()
	m, _, err := f.env.Store.Movements().List(context.Background(), repository.MovementFilter{TenantID: "TENANT0001"}, repository.Page{Limit: 100})
	require.NoError(t, err)
	return m
}

func (f *fixture) total(t *testing.T) int64 {
	t.Helper()
	p, err := f.env.Store.Products().GetByID(context.Background(), f.p.ID)
	require.NoError(t, err)
	return p.TotalQuantity
}

// ─── Ajustes ─────────────────────────────────────────────────────────────────

func TestAdjust_RegistraMovimientoYTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mov, err := f.ledger.Adjust(ctx, testutil.Ctx(f.admin), dto.AdjustStockRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Delta: -3, Reason: "perte"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementLoss, mov.Kind)
	assert.Equal(t, int64(10), mov.QtyBefore)
	assert.Equal(t, int64(7), mov.QtyAfter)
	assert.Equal(t, int64(12), f.total(t), "total = suma de filas")

	_, err = f.ledger.Adjust(ctx, testutil.Ctx(f.admin), dto.AdjustStockRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Delta: 4})
	require.NoError(t, err)

	movs := f.movements(t)
	require.Len(t, movs, 2)
	// más reciente primero: el qty_before del posterior es el qty_after del anterior
	assert.Equal(t, movs[1].QtyAfter, movs[0].QtyBefore)
}

func TestAdjust_ConcurrenteEnDosBoutiquesMantieneTotal(t *testing.T) {
	f := newFixture(t)
	const rounds = 10

	errs := make(chan error, 2*rounds)
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		for _, w := range []int64{f.w1.ID, f.w2.ID} {
			wg.Add(1)
			go func(w int64) {
				defer wg.Done()
				_, err := f.ledger.Adjust(context.Background(), testutil.Ctx(f.boss), dto.AdjustStockRequest{ProductID: f.p.ID, WarehouseID: w, Delta: 1})
				errs <- err
			}(w)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	w1, w2 := f.row(t, f.w1.ID).Quantity, f.row(t, f.w2.ID).Quantity
	assert.Equal(t, int64(10+rounds), w1)
	assert.Equal(t, int64(5+rounds), w2)
	assert.Equal(t, w1+w2, f.total(t), "total = suma de filas")
	assert.Len(t, f.movements(t), 2*rounds)
}

func TestAdjust_NoPermiteNegativo(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Adjust(context.Background(), testutil.Ctx(f.admin), dto.AdjustStockRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Delta: -11})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, int64(10), f.row(t, f.w1.ID).Quantity)
	assert.Empty(t, f.movements(t))
}

func TestAdjust_EntreprisesDistintas(t *testing.T) {
	f := newFixture(t)
	f.env.Tenant(t, "TENANT0002", "Boutique B")
	other := f.env.Warehouse(t, "TENANT0002", "Ailleurs")

	_, err := f.ledger.Adjust(context.Background(), testutil.Platform(), dto.AdjustStockRequest{ProductID: f.p.ID, WarehouseID: other.ID, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrCrossTenant)

	_, err = f.ledger.Adjust(context.Background(), testutil.Ctx(f.admin), dto.AdjustStockRequest{ProductID: f.p.ID, WarehouseID: other.ID, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la boutique ajena no existe para el tenant")
}

func TestReserveRelease_RestauraFila(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := *f.row(t, f.w1.ID)

	r, err := f.ledger.Reserve(ctx, testutil.Ctx(f.admin), dto.ReserveRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.Reserved)
	assert.Equal(t, int64(6), r.Available)

	_, err = f.ledger.Reserve(ctx, testutil.Ctx(f.admin), dto.ReserveRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Qty: 7})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.ledger.Release(ctx, testutil.Ctx(f.admin), dto.ReserveRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Qty: 4})
	require.NoError(t, err)
	after := f.row(t, f.w1.ID)
	assert.Equal(t, before.Quantity, after.Quantity)
	assert.Equal(t, before.Reserved, after.Reserved)
}

func TestSetStock_AjustaPorDiferencia(t *testing.T) {
	f := newFixture(t)

	r, err := f.ledger.SetStock(context.Background(), testutil.Ctx(f.admin), dto.CreateStockRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Quantity: 25, Slot: "A-3"})
	require.NoError(t, err)
	assert.Equal(t, int64(25), r.Quantity)
	assert.Equal(t, "A-3", r.Slot)
	movs := f.movements(t)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(15), movs[0].Qty)
}

// ─── Transferencias ──────────────────────────────────────────────────────────

func TestTransfer_Atomica(t *testing.T) {
	f := newFixture(t)

	rec, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), dto.TransferRequest{
		ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.row(t, f.w1.ID).Quantity)
	assert.Equal(t, int64(9), f.row(t, f.w2.ID).Quantity)
	assert.True(t, strings.HasPrefix(rec.DocRef, "TRF-Centre-Nord_Est-20251014"))

	movs := f.movements(t)
	require.Len(t, movs, 2)
	assert.Equal(t, movs[0].DocRef, movs[1].DocRef)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTransfer, m.Kind)
	}
	assert.Equal(t, int64(15), f.total(t))
}

func TestTransfer_MismoSegundoDocRefsDistintos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	refs := map[string]bool{}
	for i := 0; i < 3; i++ {
		rec, err := f.ledger.Transfer(ctx, testutil.Ctx(f.admin), dto.TransferRequest{
			ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 1,
		})
		require.NoError(t, err)
		refs[rec.DocRef] = true
	}
	assert.Len(t, refs, 3, "el reloj fijo no colapsa los documentos")

	perRef := map[string]int{}
	for _, m := range f.movements(t) {
		perRef[m.DocRef]++
	}
	for ref := range refs {
		assert.Equal(t, 2, perRef[ref], ref)
	}

	var used int64
	require.NoError(t, f.env.Store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		used, err = f.env.Tracker.Count(ctx, uow, "TENANT0001", quota.ResourceTransfers)
		return err
	}))
	assert.Equal(t, int64(3), used)
}

func TestTransfer_SufijoRepetidoSeRegenera(t *testing.T) {
	f := newFixture(t)
	suffixes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	f.ledger.WithDocRefSuffix(func() string {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	})
	req := dto.TransferRequest{ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 1}

	first, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), req)
	require.NoError(t, err)
	second, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), req)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(first.DocRef, "-AAAAAA"))
	assert.True(t, strings.HasSuffix(second.DocRef, "-BBBBBB"))
}

func TestTransfer_SinSufijoLibreEsConflicto(t *testing.T) {
	f := newFixture(t)
	f.ledger.WithDocRefSuffix(func() string { return "AAAAAA" })
	req := dto.TransferRequest{ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 1}

	_, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), req)
	require.NoError(t, err)
	_, err = f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), req)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.movements(t), 2)
}

func TestTransfer_GuardaMotivoEnMovimientos(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), dto.TransferRequest{
		ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 2, Reason: "rééquilibrage",
	})
	require.NoError(t, err)

	movs := f.movements(t)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, "rééquilibrage", m.Reason)
		assert.Equal(t, entity.MovementTransfer, m.Kind, "el motivo libre no cambia el tipo")
	}
}

func TestTransfer_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Reserve(context.Background(), testutil.Ctx(f.admin), dto.ReserveRequest{ProductID: f.p.ID, WarehouseID: f.w1.ID, Qty: 3})
	require.NoError(t, err)

	_, err = f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), dto.TransferRequest{
		ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 8,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.row(t, f.w1.ID).Quantity)
	assert.Equal(t, int64(5), f.row(t, f.w2.ID).Quantity)
	assert.Empty(t, f.movements(t))
	assert.Empty(t, f.env.Store.Messages(), "sin aviso si la transacción falla")
}

func TestTransfer_AvisaATresDestinatarios(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), dto.TransferRequest{
		ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 1,
	})
	require.NoError(t, err)
	var to []string
	for _, m := range f.env.Store.Messages() {
		assert.Equal(t, entity.NotifyTransfer, m.Kind)
		to = append(to, m.Recipients...)
	}
	assert.ElementsMatch(t, []string{"gerant1@mail.test", "boss@mail.test", "gerant2@mail.test"}, to)
}

func TestTransfer_IniciadorSuperadminSinDuplicado(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.boss), dto.TransferRequest{
		ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 1,
	})
	require.NoError(t, err)
	assert.Len(t, f.env.Store.Messages(), 2)
}

func TestTransfer_RequiereAdminYPlan(t *testing.T) {
	f := newFixture(t)
	clerk := f.env.User(t, "TENANT0001", "vendeur", entity.RoleUser, &f.w1.ID)
	req := dto.TransferRequest{ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w2.ID, Qty: 1}

	_, err := f.ledger.Transfer(context.Background(), testutil.Ctx(clerk), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.env.SetPlan(t, "TENANT0001", entity.PlanFree)
	_, err = f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), req)
	assert.ErrorIs(t, err, domain.ErrFeatureUnavailable)
}

func TestTransfer_MismaBoutiqueInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Transfer(context.Background(), testutil.Ctx(f.admin), dto.TransferRequest{
		ProductID: f.p.ID, FromWarehouseID: f.w1.ID, ToWarehouseID: f.w1.ID, Qty: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Inventarios ─────────────────────────────────────────────────────────────

func TestCount_AjustaDiferencias(t *testing.T) {
	f := newFixture(t)
	p2 := f.env.Product(t, "TENANT0001", "SKU-2", 1, 2)

	res, err := f.ledger.Count(context.Background(), testutil.Ctx(f.admin), dto.InventoryCountRequest{
		WarehouseID: f.w1.ID,
		Lines:       []dto.InventoryCountLine{{ProductID: f.p.ID, Counted: 8}, {ProductID: p2.ID, Counted: 0}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.DocRef, "INV-"))
	require.Len(t, res.Movements, 1, "solo la fila con diferencia")
	assert.Equal(t, int64(-2), res.Movements[0].Qty)
	assert.Equal(t, entity.MovementAdjust, res.Movements[0].Kind)
}

func TestCount_LimiteMensual(t *testing.T) {
	f := newFixture(t)
	f.env.SetPlan(t, "TENANT0001", entity.PlanFree) // máximo 2 inventarios por mes
	ctx := context.Background()
	tick := testutil.Now
	clock := func() time.Time { tick = tick.Add(time.Second); return tick }
	ledger := inventory.NewLedger(f.env.Store, f.env.Guard, nil, nil, f.env.Log.Zerolog(), clock)

	for i, counted := range []int64{9, 8} {
		_, err := ledger.Count(ctx, testutil.Ctx(f.boss), dto.InventoryCountRequest{
			WarehouseID: f.w1.ID, Lines: []dto.InventoryCountLine{{ProductID: f.p.ID, Counted: counted}},
		})
		require.NoError(t, err, "inventario %d", i)
	}
	_, err := ledger.Count(ctx, testutil.Ctx(f.boss), dto.InventoryCountRequest{
		WarehouseID: f.w1.ID, Lines: []dto.InventoryCountLine{{ProductID: f.p.ID, Counted: 7}},
	})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, int64(8), f.row(t, f.w1.ID).Quantity)
}

// ─── Lecturas ────────────────────────────────────────────────────────────────

func TestListStocks_SoloDelTenant(t *testing.T) {
	f := newFixture(t)
	f.env.Tenant(t, "TENANT0002", "Boutique B")
	wb := f.env.Warehouse(t, "TENANT0002", "B1")
	pb := f.env.Product(t, "TENANT0002", "SKU-B", 1, 2)
	f.env.Stock(t, pb.ID, wb.ID, 3)

	env, err := f.ledger.ListStocks(context.Background(), testutil.Ctx(f.admin), inventory.StockQuery{Tenant: "TENANT0002"}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), env.Count, "pedir otro tenant solo estrecha")

	env, err = f.ledger.ListStocks(context.Background(), testutil.Ctx(f.admin), inventory.StockQuery{}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.Count)
	assert.Equal(t, "SKU-1", env.Results[0].ProductSKU)
}
