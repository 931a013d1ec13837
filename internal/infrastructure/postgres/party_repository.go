package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var (
	_ repository.PartyRepository    = (*PartyRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
)

// PartyRepo clientes, partenaires y proveedores en una sola tabla discriminada por kind.
type PartyRepo struct {
	q Querier
}

func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

const partyColumns = `id, tenant_id, kind, name, email, phone, tax_id, address, created_at, updated_at`

func scanParty(row pgx.Row) (*entity.Party, error) {
	var p entity.Party
	if err := row.Scan(&p.ID, &p.TenantID, &p.Kind, &p.Name, &p.Email, &p.Phone, &p.TaxID, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	err := r.q.QueryRow(ctx, `
		INSERT INTO parties (tenant_id, kind, name, email, phone, tax_id, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		p.TenantID, p.Kind, p.Name, p.Email, p.Phone, p.TaxID, p.Address, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapErr("insert party", err)
}

func (r *PartyRepo) GetByID(ctx context.Context, id int64) (*entity.Party, error) {
	p, err := scanParty(r.q.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = $1`, id))
	return noRows(p, "get party", err)
}

func (r *PartyRepo) List(ctx context.Context, f repository.PartyFilter, p repository.Page) ([]*entity.Party, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eq("kind", f.Kind)
	return list(ctx, r.q, partyColumns, "parties", "id", w, p, "list parties", scanParty)
}

// CategoryRepo categorías por tenant (nombre único dentro del tenant).
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, tenant_id, name, description, created_at`

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	stamp(&c.CreatedAt)
	err := r.q.QueryRow(ctx, `
		INSERT INTO categories (tenant_id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, c.TenantID, c.Name, c.Description, c.CreatedAt).Scan(&c.ID)
	return mapErr("insert category", err)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	return noRows(c, "get category", err)
}

func (r *CategoryRepo) List(ctx context.Context, tenantID string, p repository.Page) ([]*entity.Category, int64, error) {
	var w filter
	w.eq("tenant_id", tenantID)
	return list(ctx, r.q, categoryColumns, "categories", "name, id", w, p, "list categories", scanCategory)
}
