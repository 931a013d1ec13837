package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse.
type WarehouseRepository interface {
	Create(ctx context.Context, w *entity.Warehouse) error
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	List(ctx context.Context, f WarehouseFilter, p Page) ([]*entity.Warehouse, int64, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
	Update(ctx context.Context, w *entity.Warehouse) error
}
