package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo persistencia de entreprises.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador (pool o tx).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `id, name, email, phone, address, city, country, tax_id, logo_path, active, created_at, updated_at`

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var t entity.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Address, &t.City, &t.Country,
		&t.TaxID, &t.LogoPath, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta el tenant con el ID ya generado.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	stamp(&t.CreatedAt)
	t.UpdatedAt = t.CreatedAt
	_, err := r.q.Exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Name, t.Email, t.Phone, t.Address, t.City, t.Country, t.TaxID, t.LogoPath,
		t.Active, t.CreatedAt, t.UpdatedAt)
	return mapErr("insert tenant", err)
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	return noRows(t, "get tenant", err)
}

func (r *TenantRepo) List(ctx context.Context, f repository.TenantFilter, p repository.Page) ([]*entity.Tenant, int64, error) {
	var w filter
	w.eq("id", f.TenantID)
	w.eqBool("active", f.Active)
	return list(ctx, r.q, tenantColumns, "tenants", "created_at DESC, id", w, p, "list tenants", scanTenant)
}

func (r *TenantRepo) Update(ctx context.Context, t *entity.Tenant) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tenants SET name = $2, email = $3, phone = $4, address = $5, city = $6, country = $7,
			tax_id = $8, logo_path = $9, active = $10, updated_at = now()
		WHERE id = $1`,
		t.ID, t.Name, t.Email, t.Phone, t.Address, t.City, t.Country, t.TaxID, t.LogoPath, t.Active)
	if err != nil {
		return mapErr("update tenant", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el tenant; las FK RESTRICT de boutiques y usuarios lo impiden si quedan filas.
func (r *TenantRepo) Delete(ctx context.Context, id string) error {
	var owned bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM warehouses WHERE tenant_id = $1)
			OR EXISTS (SELECT 1 FROM users WHERE tenant_id = $1)`, id).Scan(&owned)
	if err != nil {
		return mapErr("delete tenant", err)
	}
	if owned {
		return fmt.Errorf("el tenant posee boutiques o usuarios: %w", domain.ErrConflict)
	}
	_, err = r.q.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	return mapErr("delete tenant", err)
}

func (r *TenantRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM tenants WHERE active ORDER BY id`)
	if err != nil {
		return nil, mapErr("list active tenants", err)
	}
	ids, err := collect(rows, "list active tenants", func(row pgx.Row) (*string, error) {
		var id string
		return &id, row.Scan(&id)
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = *id
	}
	return out, nil
}
