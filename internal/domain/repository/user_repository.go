package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, f UserFilter, p Page) ([]*entity.User, int64, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
	Update(ctx context.Context, u *entity.User) error
	// ListByRole usuarios activos del tenant con el rol dado (superadmin del tenant, admins).
	ListByRole(ctx context.Context, tenantID, role string) ([]*entity.User, error)
	// ListWarehouseAdmins admins activos asignados a la boutique.
	ListWarehouseAdmins(ctx context.Context, warehouseID int64) ([]*entity.User, error)
}
