package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de factura.
const (
	InvoiceKindCustomer = "customer"
	InvoiceKindPartner  = "partner"
)

// Estados de factura.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice cabecera de factura. Kind customer => CustomerID; partner => PartnerID (exclusivos).
// Outstanding = Total - Σ pagos; Status es función de (Outstanding, Total, cancelada).
type Invoice struct {
	ID            int64
	TenantID      string
	WarehouseID   int64
	Kind          string
	Number        string
	CustomerID    *int64
	PartnerID     *int64
	Total         decimal.Decimal
	Outstanding   decimal.Decimal
	Status        string
	CreatorUserID int64
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceLine línea de factura. LineTotal = Qty * UnitPrice.
type InvoiceLine struct {
	ID                 int64
	InvoiceID          int64
	ProductID          int64
	Qty                int64
	UnitPrice          decimal.Decimal
	OriginalUnitPrice  decimal.Decimal
	PriceJustification string
	LineTotal          decimal.Decimal
}

// Payment versement inmutable sobre una factura.
type Payment struct {
	ID          int64
	InvoiceID   int64
	TenantID    string
	WarehouseID int64
	Amount      decimal.Decimal
	Method      string
	ActorUserID int64
	At          time.Time
}

// InvoiceSequence contador por (boutique, año, mes). Único por la terna completa.
type InvoiceSequence struct {
	WarehouseID int64
	Year        int
	Month       int
	LastNumber  int64
}
