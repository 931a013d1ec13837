package dto

import (
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// AdjustStockRequest ajuste de ledger (POST /mouvements-stock).
type AdjustStockRequest struct {
	ProductID   int64  `json:"produit" validate:"required,gt=0"`
	WarehouseID int64  `json:"boutique" validate:"required,gt=0"`
	Delta       int64  `json:"quantity" validate:"required"`
	Reason      string `json:"reason" validate:"omitempty,max=200"`
	DocRef      string `json:"doc_ref" validate:"omitempty,max=100"`
}

// ReserveRequest reserva/liberación de stock.
type ReserveRequest struct {
	ProductID   int64 `json:"produit" validate:"required,gt=0"`
	WarehouseID int64 `json:"boutique" validate:"required,gt=0"`
	Qty         int64 `json:"quantity" validate:"required,gt=0"`
}

// CreateStockRequest alta/ajuste de una fila de stock (POST /stocks): fija la cantidad vía ledger.
type CreateStockRequest struct {
	ProductID   int64  `json:"produit" validate:"required,gt=0"`
	WarehouseID int64  `json:"boutique" validate:"required,gt=0"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
	Slot        string `json:"slot" validate:"omitempty,max=50"`
}

// TransferRequest transferencia entre boutiques.
type TransferRequest struct {
	ProductID       int64  `json:"produit" validate:"required,gt=0"`
	FromWarehouseID int64  `json:"boutique_source" validate:"required,gt=0"`
	ToWarehouseID   int64  `json:"boutique_destination" validate:"required,gt=0,nefield=FromWarehouseID"`
	Qty             int64  `json:"quantity" validate:"required,gt=0"`
	Reason          string `json:"reason" validate:"omitempty,max=200"`
}

// InventoryCountRequest conteo físico de una boutique.
type InventoryCountRequest struct {
	WarehouseID int64                `json:"boutique" validate:"required,gt=0"`
	Lines       []InventoryCountLine `json:"lines" validate:"required,min=1,dive"`
}

// InventoryCountLine cantidad contada de un producto.
type InventoryCountLine struct {
	ProductID int64 `json:"produit" validate:"required,gt=0"`
	Counted   int64 `json:"counted" validate:"gte=0"`
}

// StockRowResponse salida de una fila de stock.
type StockRowResponse struct {
	ProductID     int64     `json:"produit"`
	ProductSKU    string    `json:"produit_sku,omitempty"`
	ProductName   string    `json:"produit_name,omitempty"`
	WarehouseID   int64     `json:"boutique"`
	WarehouseName string    `json:"boutique_name,omitempty"`
	Quantity      int64     `json:"quantity"`
	Reserved      int64     `json:"reserved"`
	Available     int64     `json:"available"`
	MinStock      int64     `json:"min_stock"`
	Slot          string    `json:"slot"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func StockRowFromEntity(r *entity.StockRow) StockRowResponse {
	return StockRowResponse{
		ProductID: r.ProductID, WarehouseID: r.WarehouseID, Quantity: r.Quantity, Reserved: r.Reserved,
		Available: r.Available(), Slot: r.Slot, UpdatedAt: r.UpdatedAt,
	}
}

func StockRowFromView(v *repository.StockView) StockRowResponse {
	out := StockRowFromEntity(&v.StockRow)
	out.ProductSKU = v.ProductSKU
	out.ProductName = v.ProductName
	out.WarehouseName = v.WarehouseName
	out.MinStock = v.MinStock
	return out
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"produit"`
	WarehouseID int64     `json:"boutique"`
	Kind        string    `json:"kind"`
	Qty         int64     `json:"quantity"`
	QtyBefore   int64     `json:"qty_before"`
	QtyAfter    int64     `json:"qty_after"`
	DocRef      string    `json:"doc_ref"`
	Reason      string    `json:"reason"`
	ActorUserID int64     `json:"actor"`
	At          time.Time `json:"at"`
}

func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID: m.ID, ProductID: m.ProductID, WarehouseID: m.WarehouseID, Kind: m.Kind, Qty: m.Qty,
		QtyBefore: m.QtyBefore, QtyAfter: m.QtyAfter, DocRef: m.DocRef, Reason: m.Reason,
		ActorUserID: m.ActorUserID, At: m.At,
	}
}

// TransferReceipt resultado de una transferencia.
type TransferReceipt struct {
	DocRef string           `json:"doc_ref"`
	Source StockRowResponse `json:"source"`
	Target StockRowResponse `json:"destination"`
	Debit  MovementResponse `json:"debit"`
	Credit MovementResponse `json:"credit"`
}

// InventoryCountResponse resultado de un conteo.
type InventoryCountResponse struct {
	DocRef    string             `json:"doc_ref"`
	Movements []MovementResponse `json:"movements"`
}
