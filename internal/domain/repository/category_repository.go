package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	List(ctx context.Context, tenantID string, p Page) ([]*entity.Category, int64, error)
}
