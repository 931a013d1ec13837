package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// tenant_id NULL corresponde al operador de plataforma.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role, coalesce(tenant_id, ''),
	warehouse_id, avatar_path, active, email_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role,
		&u.TenantID, &u.WarehouseID, &u.AvatarPath, &u.Active, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un nuevo usuario; username y email son únicos sin distinguir mayúsculas.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	stamp(&u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	err := r.q.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role, tenant_id,
			warehouse_id, avatar_path, active, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, nullable(u.TenantID),
		u.WarehouseID, u.AvatarPath, u.Active, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	return mapErr("insert user", err)
}

func (r *UserRepo) one(ctx context.Context, op, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	return noRows(u, op, err)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.one(ctx, "get user", "id = $1", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.one(ctx, "get user by username", "lower(username) = lower($1)", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if email == "" {
		return nil, nil
	}
	return r.one(ctx, "get user by email", "email <> '' AND lower(email) = lower($1)", email)
}

func (r *UserRepo) List(ctx context.Context, f repository.UserFilter, p repository.Page) ([]*entity.User, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eqInt("warehouse_id", f.WarehouseID)
	w.eq("role", f.Role)
	w.eqBool("active", f.Active)
	return list(ctx, r.q, userColumns, "users", "id", w, p, "list users", scanUser)
}

func (r *UserRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var w filter
	w.add("tenant_id = ?", tenantID)
	return count(ctx, r.q, "users", &w, "count users")
}

// Update no toca tenant_id: si el llamador lo cambió se rechaza como invariante.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users SET username = $3, email = $4, password_hash = $5, first_name = $6, last_name = $7,
			role = $8, warehouse_id = $9, avatar_path = $10, active = $11, email_verified = $12, updated_at = now()
		WHERE id = $1 AND coalesce(tenant_id, '') = $2`,
		u.ID, u.TenantID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
		u.WarehouseID, u.AvatarPath, u.Active, u.EmailVerified)
	if err != nil {
		return mapErr("update user", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	prev, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return domain.ErrNotFound
	}
	return domain.NewInvariant("el tenant de un usuario es inmutable")
}

func (r *UserRepo) many(ctx context.Context, op, where string, args ...any) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return collect(rows, op, scanUser)
}

func (r *UserRepo) ListByRole(ctx context.Context, tenantID, role string) ([]*entity.User, error) {
	return r.many(ctx, "list users by role", "tenant_id = $1 AND role = $2 AND active", tenantID, role)
}

func (r *UserRepo) ListWarehouseAdmins(ctx context.Context, warehouseID int64) ([]*entity.User, error) {
	return r.many(ctx, "list warehouse admins", "warehouse_id = $1 AND role = 'admin' AND active", warehouseID)
}
