package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant (DIP).
type TenantRepository interface {
	Create(ctx context.Context, t *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	List(ctx context.Context, f TenantFilter, p Page) ([]*entity.Tenant, int64, error)
	Update(ctx context.Context, t *entity.Tenant) error
	Delete(ctx context.Context, id string) error
	ListActiveIDs(ctx context.Context) ([]string, error)
}
