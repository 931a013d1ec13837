package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain"
	dombilling "github.com/jhoicas/Boutique-api/internal/domain/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/testutil"
)

type fixture struct {
	env      *testutil.Env
	engine   *billing.Engine
	seq      *billing.Sequencer
	admin    *entity.User
	w        *entity.Warehouse
	p        *entity.Product
	customer *entity.Party
	partner  *entity.Party
}

// newFixture: tenant en basic, una boutique, producto compra 6000 / venta 10000 con stock 10.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	w := env.Warehouse(t, "TENANT0001", "Centre")
	admin := env.User(t, "TENANT0001", "gerant", entity.RoleAdmin, &w.ID)
	p := env.Product(t, "TENANT0001", "SKU-1", 6000, 10000)
	env.Stock(t, p.ID, w.ID, 10)

	customer := &entity.Party{TenantID: "TENANT0001", Kind: entity.PartyCustomer, Name: "Client A"}
	partner := &entity.Party{TenantID: "TENANT0001", Kind: entity.PartyPartner, Name: "Partenaire B"}
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Parties().Create(ctx, customer); err != nil {
			return err
		}
		return uow.Parties().Create(ctx, partner)
	}))

	log := env.Log.Zerolog()
	ledger := inventory.NewLedger(env.Store, env.Guard, ports.NopInvalidator{}, ports.NopMetrics{}, log, env.Clock)
	seq := billing.NewSequencer(env.Store, env.Clock)
	engine := billing.NewEngine(billing.Deps{
		Store: env.Store, Guard: env.Guard, Tracker: env.Tracker, Sequencer: seq, Ledger: ledger,
		Log: log, Now: env.Clock,
	})
	return &fixture{env: env, engine: engine, seq: seq, admin: admin, w: w, p: p, customer: customer, partner: partner}
}

func (f *fixture) invoice(qty int64, debit bool) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		WarehouseID: f.w.ID, CustomerID: &f.customer.ID, DebitStock: debit,
		Lines: []dto.InvoiceLineRequest{{ProductID: f.p.ID, Qty: qty}},
	}
}

func (f *fixture) stock(t *testing.T) int64 {
	t.Helper()
	r, err := f.env.Store.Stocks().Get(context.Background(), f.p.ID, f.w.ID)
	require.NoError(t, err)
	return r.Quantity
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ─── Secuencia ───────────────────────────────────────────────────────────────

func TestSequencer_ConcurrenciaSinHuecos(t *testing.T) {
	f := newFixture(t)
	f.env.Store.SeedSequence(entity.InvoiceSequence{WarehouseID: 7, Year: 2025, Month: 10, LastNumber: 12})

	var (
		mu   sync.Mutex
		got  []string
		errs = make(chan error, 3)
		wg   sync.WaitGroup
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.seq.NextFormatted(context.Background(), 7)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			got = append(got, n)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, []string{"FA7-251014-0013", "FA7-251014-0014", "FA7-251014-0015"}, got)
	seq, err := f.env.Store.Sequences().Get(context.Background(), 7, 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), seq.LastNumber)
}

// ─── Alta de factura ─────────────────────────────────────────────────────────

func TestCreateInvoice_NumeraCalculaYCuenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), f.invoice(2, false))
	require.NoError(t, err)
	assert.Equal(t, dombilling.FormatNumber(f.w.ID, testutil.Now, 1), inv.Number)
	assert.Equal(t, entity.InvoiceKindCustomer, inv.Kind)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(20000)))
	assert.True(t, inv.Outstanding.Equal(inv.Total))
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
	require.Len(t, inv.Lines, 1)
	assert.True(t, inv.Lines[0].OriginalUnitPrice.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, int64(10), f.stock(t), "sin debit_stock el stock no cambia")

	var used int64
	require.NoError(t, f.env.Store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		used, err = f.env.Tracker.Count(ctx, uow, "TENANT0001", quota.ResourceInvoices)
		return err
	}))
	assert.Equal(t, int64(1), used)
}

func TestCreateInvoice_ConcurrentesNumeracionYStock(t *testing.T) {
	f := newFixture(t)
	const n = 5

	var (
		mu      sync.Mutex
		numbers []string
		errs    = make(chan error, n)
		wg      sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), f.invoice(1, true))
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			numbers = append(numbers, inv.Number)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	want := make([]string, 0, n)
	for i := int64(1); i <= n; i++ {
		want = append(want, dombilling.FormatNumber(f.w.ID, testutil.Now, i))
	}
	assert.ElementsMatch(t, want, numbers, "numeración sin huecos ni duplicados")
	assert.Equal(t, int64(10-n), f.stock(t))

	p, err := f.env.Store.Products().GetByID(context.Background(), f.p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10-n), p.TotalQuantity, "total = suma de filas")

	var used int64
	require.NoError(t, f.env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		used, err = f.env.Tracker.Count(ctx, uow, "TENANT0001", quota.ResourceInvoices)
		return err
	}))
	assert.Equal(t, int64(n), used)
}

func TestCreateInvoice_PrecioBajoCompraRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.invoice(1, true)
	req.Lines = append(req.Lines, dto.InvoiceLineRequest{ProductID: f.p.ID, Qty: 1, UnitPrice: price("5000"), PriceJustification: "promo"})

	_, err := f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, domain.DetailsOf(err), "lines[1].unit_price")

	assert.Equal(t, int64(10), f.stock(t))
	invs, total, err := f.env.Store.Invoices().List(ctx, repository.InvoiceFilter{TenantID: "TENANT0001"}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, invs)

	// El número no se consumió.
	inv, err := f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), f.invoice(1, false))
	require.NoError(t, err)
	assert.Equal(t, dombilling.FormatNumber(f.w.ID, testutil.Now, 1), inv.Number)
}

func TestCreateInvoice_PrecioDistintoExigeJustificacion(t *testing.T) {
	f := newFixture(t)
	req := f.invoice(1, false)
	req.Lines[0].UnitPrice = price("9000")

	_, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, domain.DetailsOf(err), "lines[0].price_justification")

	req.Lines[0].PriceJustification = "client fidèle"
	inv, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), req)
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(9000)))
}

func TestCreateInvoice_DebitaStockConDocRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), f.invoice(3, true))
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.stock(t))

	movs, _, err := f.env.Store.Movements().List(ctx, repository.MovementFilter{TenantID: "TENANT0001", DocRef: inv.Number}, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(-3), movs[0].Qty)
}

func TestCreateInvoice_StockInsuficienteNoCreaFactura(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), f.invoice(11, true))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	seq, err := f.env.Store.Sequences().Get(context.Background(), f.w.ID, 2025, 10)
	require.NoError(t, err)
	assert.Nil(t, seq)
}

func TestCreateInvoice_DestinoSegunTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.invoice(1, false)
	req.CustomerID = nil
	_, err := f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	req = f.invoice(1, false)
	req.Kind = entity.InvoiceKindPartner
	req.CustomerID = nil
	req.PartnerID = &f.customer.ID
	_, err = f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), req)
	require.ErrorIs(t, err, domain.ErrInvalidInput, "un cliente no sirve como partenaire")

	req.PartnerID = &f.partner.ID
	inv, err := f.engine.CreateInvoice(ctx, testutil.Ctx(f.admin), req)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceKindPartner, inv.Kind)
}

func TestCreateInvoice_PartenaireRequierePlan(t *testing.T) {
	f := newFixture(t)
	f.env.SetPlan(t, "TENANT0001", entity.PlanFree)
	req := f.invoice(1, false)
	req.Kind = entity.InvoiceKindPartner
	req.CustomerID = nil
	req.PartnerID = &f.partner.ID

	_, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), req)
	require.ErrorIs(t, err, domain.ErrFeatureUnavailable)
}

func TestCreateInvoice_OtroTenantNoVeLaBoutique(t *testing.T) {
	f := newFixture(t)
	f.env.Tenant(t, "TENANT0002", "Boutique B")
	intruder := f.env.User(t, "TENANT0002", "intrus", entity.RoleAdmin, nil)

	_, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(intruder), f.invoice(1, false))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Versements ──────────────────────────────────────────────────────────────

func TestRecordPayment_ParcialCompletoYExceso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sc := testutil.Ctx(f.admin)
	inv, err := f.engine.CreateInvoice(ctx, sc, f.invoice(1, false))
	require.NoError(t, err)

	r, err := f.engine.RecordPayment(ctx, sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(3000)})
	require.NoError(t, err)
	assert.True(t, r.Invoice.Outstanding.Equal(decimal.NewFromInt(7000)))
	assert.Equal(t, entity.InvoiceStatusPartial, r.Invoice.Status)
	assert.Equal(t, "cash", r.Payment.Method)

	r, err = f.engine.RecordPayment(ctx, sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(7000), Method: "card"})
	require.NoError(t, err)
	assert.True(t, r.Invoice.Outstanding.IsZero())
	assert.Equal(t, entity.InvoiceStatusPaid, r.Invoice.Status)

	_, err = f.engine.RecordPayment(ctx, sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)

	got, err := f.engine.Get(ctx, sc, inv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Payments, 2)
}

func TestRecordPayment_MontoNoPositivo(t *testing.T) {
	f := newFixture(t)
	sc := testutil.Ctx(f.admin)
	inv, err := f.engine.CreateInvoice(context.Background(), sc, f.invoice(1, false))
	require.NoError(t, err)

	_, err = f.engine.RecordPayment(context.Background(), sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordPayment_RequiereActor(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), f.invoice(1, false))
	require.NoError(t, err)

	sc := entity.SecurityContext{TenantID: "TENANT0001", Role: entity.RoleAdmin}
	_, err = f.engine.RecordPayment(context.Background(), sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

// ─── Anulación ───────────────────────────────────────────────────────────────

func TestCancel_ReintegraStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sc := testutil.Ctx(f.admin)
	inv, err := f.engine.CreateInvoice(ctx, sc, f.invoice(4, true))
	require.NoError(t, err)
	require.Equal(t, int64(6), f.stock(t))

	out, err := f.engine.Cancel(ctx, sc, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, out.Status)
	assert.Equal(t, int64(10), f.stock(t))

	_, err = f.engine.Cancel(ctx, sc, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
	_, err = f.engine.RecordPayment(ctx, sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestCancel_ConVersementsSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sc := testutil.Ctx(f.admin)
	inv, err := f.engine.CreateInvoice(ctx, sc, f.invoice(1, false))
	require.NoError(t, err)
	_, err = f.engine.RecordPayment(ctx, sc, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, sc, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

// ─── Lectura y documento ─────────────────────────────────────────────────────

func TestGet_OtroTenantEsNotFound(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), f.invoice(1, false))
	require.NoError(t, err)
	f.env.Tenant(t, "TENANT0002", "Boutique B")
	other := f.env.User(t, "TENANT0002", "autre", entity.RoleAdmin, nil)

	_, err = f.engine.Get(context.Background(), testutil.Ctx(other), inv.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.engine.List(context.Background(), testutil.Ctx(other), billing.InvoiceQuery{}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestList_FiltraPorTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sc := testutil.Ctx(f.admin)
	_, err := f.engine.CreateInvoice(ctx, sc, f.invoice(1, false))
	require.NoError(t, err)
	req := f.invoice(1, false)
	req.Kind, req.CustomerID, req.PartnerID = entity.InvoiceKindPartner, nil, &f.partner.ID
	_, err = f.engine.CreateInvoice(ctx, sc, req)
	require.NoError(t, err)

	all, err := f.engine.List(ctx, sc, billing.InvoiceQuery{}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Count)
	partners, err := f.engine.List(ctx, sc, billing.InvoiceQuery{Kind: entity.InvoiceKindPartner}, dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), partners.Count)
	assert.Equal(t, entity.InvoiceKindPartner, partners.Results[0].Kind)
}

type fakePDF struct{ doc *billing.Document }

func (p *fakePDF) GenerateInvoicePDF(_ context.Context, doc *billing.Document) ([]byte, error) {
	p.doc = doc
	return []byte("%PDF"), nil
}

func TestRenderer_PDFCargaDocumento(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), testutil.Ctx(f.admin), f.invoice(2, false))
	require.NoError(t, err)
	gen := &fakePDF{}

	file, err := billing.NewRenderer(f.engine, gen, nil).PDF(context.Background(), testutil.Ctx(f.admin), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "facture_"+inv.Number+".pdf", file.Name)
	require.NotNil(t, gen.doc)
	assert.Equal(t, "Boutique A", gen.doc.Tenant.Name)
	assert.Equal(t, "Client A", gen.doc.Party.Name)
	require.Len(t, gen.doc.Lines, 1)
	assert.Equal(t, "SKU-1", gen.doc.Lines[0].SKU)
}
