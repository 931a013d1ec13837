package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por boutique+producto.
// Los métodos de bloqueo solo tienen sentido dentro de una transacción.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID int64) (*entity.StockRow, error)
	// LockOrCreate bloquea la fila (SELECT FOR UPDATE), creándola con cantidad 0 si no existe.
	LockOrCreate(ctx context.Context, productID, warehouseID int64) (*entity.StockRow, error)
	Save(ctx context.Context, row *entity.StockRow) error
	List(ctx context.Context, f StockFilter, p Page) ([]*StockView, int64, error)
	// ListAlerts filas con min_stock > 0 y quantity < min_stock (bajo o agotado) del tenant.
	ListAlerts(ctx context.Context, tenantID string) ([]*StockView, error)
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]*entity.StockRow, error)
}
