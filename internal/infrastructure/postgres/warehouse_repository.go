package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación de WarehouseRepository (boutiques).
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador (pool o tx).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, tenant_id, name, address, city, phone, active, created_at, updated_at`

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.TenantID, &w.Name, &w.Address, &w.City, &w.Phone, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	stamp(&w.CreatedAt)
	w.UpdatedAt = w.CreatedAt
	err := r.q.QueryRow(ctx, `
		INSERT INTO warehouses (tenant_id, name, address, city, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		w.TenantID, w.Name, w.Address, w.City, w.Phone, w.Active, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	return mapErr("insert warehouse", err)
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.q.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id))
	return noRows(w, "get warehouse", err)
}

func (r *WarehouseRepo) List(ctx context.Context, f repository.WarehouseFilter, p repository.Page) ([]*entity.Warehouse, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eqBool("active", f.Active)
	return list(ctx, r.q, warehouseColumns, "warehouses", "id", w, p, "list warehouses", scanWarehouse)
}

func (r *WarehouseRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var w filter
	w.add("tenant_id = ?", tenantID)
	return count(ctx, r.q, "warehouses", &w, "count warehouses")
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE warehouses SET name = $2, address = $3, city = $4, phone = $5, active = $6, updated_at = now()
		WHERE id = $1`,
		w.ID, w.Name, w.Address, w.City, w.Phone, w.Active)
	if err != nil {
		return mapErr("update warehouse", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
