package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados físicos de un producto.
const (
	ProductStateNew       = "new"
	ProductStateUsed      = "used"
	ProductStateRefurb    = "refurb"
	ProductStateDefective = "defective"
)

// ValidProductState indica si s es un estado conocido.
func ValidProductState(s string) bool {
	switch s {
	case ProductStateNew, ProductStateUsed, ProductStateRefurb, ProductStateDefective:
		return true
	}
	return false
}

// Product representa un producto (SKU y código de barras únicos globalmente).
// TotalQuantity es derivado: suma de StockRow.Quantity del producto, recalculado por el ledger.
type Product struct {
	ID             int64
	TenantID       string
	SKU            string
	Barcode        *string
	Name           string
	Description    string
	CategoryID     *int64
	SupplierID     *int64
	PurchasePrice  decimal.Decimal
	SalePrice      decimal.Decimal
	WholesalePrice *decimal.Decimal
	Currency       string
	UnitOfMeasure  string
	MinStock       int64
	MaxStock       int64
	ReorderPoint   *int64
	State          string
	Active         bool
	TotalQuantity  int64
	ImagePath      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NeedsReorder indica si la cantidad total cayó al punto de pedido (o a min_stock si no hay punto definido).
func (p *Product) NeedsReorder() bool {
	if p.ReorderPoint != nil {
		return p.TotalQuantity <= *p.ReorderPoint
	}
	return p.MinStock > 0 && p.TotalQuantity < p.MinStock
}
