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
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

// StockRepo filas de stock por (producto, boutique).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador (pool o tx). Los métodos de bloqueo requieren tx.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `s.product_id, s.warehouse_id, s.quantity, s.reserved, s.slot, s.updated_at`

func scanStock(row pgx.Row) (*entity.StockRow, error) {
	var s entity.StockRow
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.Reserved, &s.Slot, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStockView(row pgx.Row) (*repository.StockView, error) {
	var v repository.StockView
	err := row.Scan(&v.ProductID, &v.WarehouseID, &v.Quantity, &v.Reserved, &v.Slot, &v.UpdatedAt,
		&v.TenantID, &v.ProductSKU, &v.ProductName, &v.MinStock, &v.WarehouseName)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const (
	stockViewColumns = stockColumns + `, p.tenant_id, p.sku, p.name, p.min_stock, w.name`
	stockViewFrom    = `stock_rows s
		JOIN products p ON p.id = s.product_id
		JOIN warehouses w ON w.id = s.warehouse_id`
)

func (r *StockRepo) Get(ctx context.Context, productID, warehouseID int64) (*entity.StockRow, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `
		SELECT `+stockColumns+` FROM stock_rows s WHERE s.product_id = $1 AND s.warehouse_id = $2`,
		productID, warehouseID))
	return noRows(s, "get stock", err)
}

// LockOrCreate materializa la fila en 0 si falta y la bloquea con FOR UPDATE.
// Dos transacciones sobre la misma celda quedan serializadas hasta el commit de la primera.
func (r *StockRepo) LockOrCreate(ctx context.Context, productID, warehouseID int64) (*entity.StockRow, error) {
	var okProduct, okWarehouse bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE id = $1), EXISTS (SELECT 1 FROM warehouses WHERE id = $2)`,
		productID, warehouseID).Scan(&okProduct, &okWarehouse)
	if err != nil {
		return nil, mapErr("lock stock", err)
	}
	if !okProduct || !okWarehouse {
		return nil, domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock_rows (product_id, warehouse_id) VALUES ($1, $2)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`, productID, warehouseID); err != nil {
		return nil, mapErr("lock stock", err)
	}
	s, err := scanStock(r.q.QueryRow(ctx, `
		SELECT `+stockColumns+` FROM stock_rows s
		WHERE s.product_id = $1 AND s.warehouse_id = $2
		FOR UPDATE`, productID, warehouseID))
	if err != nil {
		return nil, mapErr("lock stock", err)
	}
	return s, nil
}

// Save escribe la fila completa. Los CHECK de la tabla repiten la validación.
func (r *StockRepo) Save(ctx context.Context, row *entity.StockRow) error {
	if row.Quantity < 0 || row.Reserved < 0 || row.Reserved > row.Quantity {
		return domain.NewInvariant("fila de stock inconsistente")
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_rows (product_id, warehouse_id, quantity, reserved, slot, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved, slot = EXCLUDED.slot, updated_at = now()
		RETURNING updated_at`,
		row.ProductID, row.WarehouseID, row.Quantity, row.Reserved, row.Slot).Scan(&row.UpdatedAt)
	return mapErr("save stock", err)
}

func stockFilter(f repository.StockFilter) filter {
	var w filter
	w.eq("p.tenant_id", f.TenantID)
	w.eqInt("s.warehouse_id", f.WarehouseID)
	w.eqInt("s.product_id", f.ProductID)
	if f.LowOnly {
		w.add("p.min_stock > 0 AND s.quantity < p.min_stock")
	}
	return w
}

func (r *StockRepo) List(ctx context.Context, f repository.StockFilter, p repository.Page) ([]*repository.StockView, int64, error) {
	return list(ctx, r.q, stockViewColumns, stockViewFrom, "s.warehouse_id, s.product_id",
		stockFilter(f), p, "list stock", scanStockView)
}

func (r *StockRepo) ListAlerts(ctx context.Context, tenantID string) ([]*repository.StockView, error) {
	out, _, err := r.List(ctx, repository.StockFilter{TenantID: tenantID, LowOnly: true}, repository.Page{})
	return out, err
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*entity.StockRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+stockColumns+` FROM stock_rows s WHERE s.warehouse_id = $1 ORDER BY s.product_id`, warehouseID)
	if err != nil {
		return nil, mapErr("list warehouse stock", err)
	}
	return collect(rows, "list warehouse stock", scanStock)
}

// MovementRepo log append-only de movimientos: no expone update ni delete.
type MovementRepo struct {
	q Querier
}

func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, tenant_id, product_id, warehouse_id, kind, qty, qty_before, qty_after,
	doc_ref, reason, actor_user_id, at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.WarehouseID, &m.Kind, &m.Qty, &m.QtyBefore,
		&m.QtyAfter, &m.DocRef, &m.Reason, &m.ActorUserID, &m.At)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	stamp(&m.At)
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_movements (tenant_id, product_id, warehouse_id, kind, qty, qty_before, qty_after,
			doc_ref, reason, actor_user_id, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		m.TenantID, m.ProductID, m.WarehouseID, m.Kind, m.Qty, m.QtyBefore, m.QtyAfter,
		m.DocRef, m.Reason, m.ActorUserID, m.At,
	).Scan(&m.ID)
	return mapErr("insert movement", err)
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter, p repository.Page) ([]*entity.StockMovement, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eqInt("warehouse_id", f.WarehouseID)
	w.eqInt("product_id", f.ProductID)
	w.eq("kind", f.Kind)
	w.eq("doc_ref", f.DocRef)
	w.between("at", f.From, f.To)
	return list(ctx, r.q, movementColumns, "stock_movements", "id DESC", w, p, "list movements", scanMovement)
}

func (r *MovementRepo) CountDocRefs(ctx context.Context, tenantID, prefix string, since time.Time) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		SELECT count(DISTINCT doc_ref) FROM stock_movements
		WHERE tenant_id = $1 AND starts_with(doc_ref, $2) AND at >= $3`,
		tenantID, prefix, since).Scan(&n)
	return n, mapErr("count doc refs", err)
}
