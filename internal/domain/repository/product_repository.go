package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter, p Page) ([]*ProductView, int64, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
	// AddToTotal total_quantity += delta en una sola sentencia sobre la fila del producto.
	// Los movimientos concurrentes de distintas boutiques se serializan en esa fila.
	AddToTotal(ctx context.Context, productID, delta int64) (int64, error)
	// RecomputeTotal total_quantity = Σ stock_rows.quantity (carga inicial y reparación).
	RecomputeTotal(ctx context.Context, productID int64) (int64, error)
}
