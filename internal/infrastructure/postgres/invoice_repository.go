package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository         = (*InvoiceRepo)(nil)
	_ repository.InvoiceSequenceRepository = (*SequenceRepo)(nil)
	_ repository.PaymentRepository         = (*PaymentRepo)(nil)
)

// InvoiceRepo cabeceras y líneas de factura.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador (pool o tx).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, tenant_id, warehouse_id, kind, number, customer_id, partner_id, total, outstanding,
	status, creator_user_id, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.WarehouseID, &inv.Kind, &inv.Number, &inv.CustomerID,
		&inv.PartnerID, &inv.Total, &inv.Outstanding, &inv.Status, &inv.CreatorUserID, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserta la cabecera; el número es único global (uq en invoices.number).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	stamp(&inv.CreatedAt)
	inv.UpdatedAt = inv.CreatedAt
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoices (tenant_id, warehouse_id, kind, number, customer_id, partner_id, total, outstanding,
			status, creator_user_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		inv.TenantID, inv.WarehouseID, inv.Kind, inv.Number, inv.CustomerID, inv.PartnerID, inv.Total,
		inv.Outstanding, inv.Status, inv.CreatorUserID, inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	return mapErr("insert invoice", err)
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	return noRows(inv, "get invoice", err)
}

// GetForUpdate bloquea la cabecera: pagos y anulaciones concurrentes se serializan aquí.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	return noRows(inv, "lock invoice", err)
}

func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET total = $2, outstanding = $3, status = $4, notes = $5, updated_at = now()
		WHERE id = $1`, inv.ID, inv.Total, inv.Outstanding, inv.Status, inv.Notes)
	if err != nil {
		return mapErr("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) CreateLine(ctx context.Context, l *entity.InvoiceLine) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoice_lines (invoice_id, product_id, qty, unit_price, original_unit_price, price_justification, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		l.InvoiceID, l.ProductID, l.Qty, l.UnitPrice, l.OriginalUnitPrice, l.PriceJustification, l.LineTotal,
	).Scan(&l.ID)
	return mapErr("insert invoice line", err)
}

func (r *InvoiceRepo) ListLines(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, product_id, qty, unit_price, original_unit_price, price_justification, line_total
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, mapErr("list invoice lines", err)
	}
	return collect(rows, "list invoice lines", func(row pgx.Row) (*entity.InvoiceLine, error) {
		var l entity.InvoiceLine
		err := row.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.OriginalUnitPrice,
			&l.PriceJustification, &l.LineTotal)
		return &l, err
	})
}

func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter, p repository.Page) ([]*entity.Invoice, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eqInt("warehouse_id", f.WarehouseID)
	w.eq("kind", f.Kind)
	w.eq("status", f.Status)
	w.eqInt("customer_id", f.CustomerID)
	w.eqInt("partner_id", f.PartnerID)
	w.between("created_at", f.From, f.To)
	return list(ctx, r.q, invoiceColumns, "invoices", "id DESC", w, p, "list invoices", scanInvoice)
}

func (r *InvoiceRepo) CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	var w filter
	w.add("tenant_id = ? AND created_at >= ?", tenantID, since)
	return count(ctx, r.q, "invoices", &w, "count invoices")
}

// Aggregate el saldo pendiente es histórico; conteo e ingresos solo desde since. Excluye anuladas.
func (r *InvoiceRepo) Aggregate(ctx context.Context, tenantID string, since time.Time) (repository.InvoiceAggregate, error) {
	var agg repository.InvoiceAggregate
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE created_at >= $2),
			coalesce(sum(total) FILTER (WHERE created_at >= $2), 0),
			coalesce(sum(outstanding), 0)
		FROM invoices
		WHERE tenant_id = $1 AND status <> 'cancelled'`, tenantID, since,
	).Scan(&agg.Count, &agg.Revenue, &agg.Outstanding)
	return agg, mapErr("aggregate invoices", err)
}

// SequenceRepo contador por (boutique, año, mes).
type SequenceRepo struct {
	q Querier
}

func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next crea o incrementa la fila en una sola sentencia: el upsert toma el bloqueo de fila
// y las facturas concurrentes de la misma terna esperan al commit.
func (r *SequenceRepo) Next(ctx context.Context, warehouseID int64, year, month int) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (warehouse_id, year, month, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (warehouse_id, year, month)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number`, warehouseID, year, month).Scan(&n)
	return n, mapErr("next invoice number", err)
}

func (r *SequenceRepo) Get(ctx context.Context, warehouseID int64, year, month int) (*entity.InvoiceSequence, error) {
	var s entity.InvoiceSequence
	err := r.q.QueryRow(ctx, `
		SELECT warehouse_id, year, month, last_number FROM invoice_sequences
		WHERE warehouse_id = $1 AND year = $2 AND month = $3`, warehouseID, year, month,
	).Scan(&s.WarehouseID, &s.Year, &s.Month, &s.LastNumber)
	return noRows(&s, "get invoice sequence", err)
}

// PaymentRepo versements inmutables.
type PaymentRepo struct {
	q Querier
}

func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, invoice_id, tenant_id, warehouse_id, amount, method, actor_user_id, at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	if err := row.Scan(&p.ID, &p.InvoiceID, &p.TenantID, &p.WarehouseID, &p.Amount, &p.Method, &p.ActorUserID, &p.At); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	stamp(&p.At)
	err := r.q.QueryRow(ctx, `
		INSERT INTO payments (invoice_id, tenant_id, warehouse_id, amount, method, actor_user_id, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.InvoiceID, p.TenantID, p.WarehouseID, p.Amount, p.Method, p.ActorUserID, p.At,
	).Scan(&p.ID)
	return mapErr("insert payment", err)
}

func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, mapErr("list invoice payments", err)
	}
	return collect(rows, "list invoice payments", scanPayment)
}

func (r *PaymentRepo) List(ctx context.Context, f repository.PaymentFilter, p repository.Page) ([]*entity.Payment, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eqInt("invoice_id", f.InvoiceID)
	w.eqInt("warehouse_id", f.WarehouseID)
	return list(ctx, r.q, paymentColumns, "payments", "id DESC", w, p, "list payments", scanPayment)
}
