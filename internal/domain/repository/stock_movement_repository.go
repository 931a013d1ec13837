package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// StockMovementRepository log append-only de movimientos.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	List(ctx context.Context, f MovementFilter, p Page) ([]*entity.StockMovement, int64, error)
	// CountDocRefs doc_refs distintos del tenant con el prefijo dado desde since.
	CountDocRefs(ctx context.Context, tenantID, prefix string, since time.Time) (int64, error)
}
