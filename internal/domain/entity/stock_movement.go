package entity

import "time"

// StockRow es la celda de inventario por (producto, boutique).
// Invariantes: 0 <= Reserved <= Quantity.
type StockRow struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int64
	Reserved    int64
	Slot        string
	UpdatedAt   time.Time
}

// Available cantidad que puede salir (no reservada).
func (s *StockRow) Available() int64 { return s.Quantity - s.Reserved }

// Tipos de movimiento.
const (
	MovementIn       = "in"
	MovementOut      = "out"
	MovementAdjust   = "adjust"
	MovementTransfer = "transfer"
	MovementLoss     = "loss"
	MovementReturn   = "return"
)

// StockMovement registro inmutable de un delta de stock. Qty lleva signo: QtyAfter = QtyBefore + Qty.
type StockMovement struct {
	ID          int64
	TenantID    string
	ProductID   int64
	WarehouseID int64
	Kind        string
	Qty         int64
	QtyBefore   int64
	QtyAfter    int64
	DocRef      string
	Reason      string
	ActorUserID int64
	At          time.Time
}
