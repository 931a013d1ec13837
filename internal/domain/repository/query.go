package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// Page paginación por offset.
type Page struct {
	Limit  int
	Offset int
}

// TenantScope: TenantID vacío = todos los tenants (solo operador de plataforma).
// El filtro de tenant se aplica siempre antes que cualquier otro.

// TenantFilter filtros del listado de tenants.
type TenantFilter struct {
	TenantID string
	Active   *bool
}

// WarehouseFilter filtros del listado de boutiques.
type WarehouseFilter struct {
	TenantID string
	Active   *bool
}

// UserFilter filtros del listado de usuarios.
type UserFilter struct {
	TenantID    string
	WarehouseID *int64
	Role        string
	Active      *bool
}

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	TenantID   string
	CategoryID *int64
	SupplierID *int64
	Active     *bool
	SKU        string
	Barcode    string
}

// StockFilter filtros del listado de filas de stock.
type StockFilter struct {
	TenantID    string
	WarehouseID *int64
	ProductID   *int64
	LowOnly     bool
}

// MovementFilter filtros del log de movimientos.
type MovementFilter struct {
	TenantID    string
	WarehouseID *int64
	ProductID   *int64
	Kind        string
	DocRef      string
	From        *time.Time
	To          *time.Time
}

// InvoiceFilter filtros del listado de facturas.
type InvoiceFilter struct {
	TenantID    string
	WarehouseID *int64
	Kind        string
	Status      string
	CustomerID  *int64
	PartnerID   *int64
	From        *time.Time
	To          *time.Time
}

// PaymentFilter filtros del listado de versements.
type PaymentFilter struct {
	TenantID    string
	InvoiceID   *int64
	WarehouseID *int64
}

// AuditFilter filtros del journal.
type AuditFilter struct {
	TenantID    string
	WarehouseID *int64
	Kind        string
	ActorUserID *int64
	From        *time.Time
	To          *time.Time
}

// PartyFilter filtros de clientes/partenaires/proveedores.
type PartyFilter struct {
	TenantID string
	Kind     string
}

// ProductView producto con sus relaciones cargadas (evita consultas por fila).
type ProductView struct {
	entity.Product
	CategoryName string
	SupplierName string
}

// StockView fila de stock con producto y boutique cargados.
type StockView struct {
	entity.StockRow
	TenantID      string
	ProductSKU    string
	ProductName   string
	MinStock      int64
	WarehouseName string
}

// InvoiceAggregate conteos simples para el dashboard.
type InvoiceAggregate struct {
	Count       int64
	Revenue     decimal.Decimal
	Outstanding decimal.Decimal
}
