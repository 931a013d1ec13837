package inventory

import (
	"sort"
	"strings"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// Motivos reconocidos que fijan el tipo de movimiento por encima del signo.
const (
	ReasonLoss     = "loss"
	ReasonReturn   = "return"
	ReasonAdjust   = "adjust"
	ReasonTransfer = "transfer"
)

// KindFor deriva el tipo de movimiento a partir del motivo y, si no es concluyente, del signo.
func KindFor(delta int64, reason string) string {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case ReasonLoss, "perte":
		return entity.MovementLoss
	case ReasonReturn, "retour":
		return entity.MovementReturn
	case ReasonAdjust, "ajustement", "inventaire":
		return entity.MovementAdjust
	case ReasonTransfer, "transfert":
		return entity.MovementTransfer
	}
	if delta < 0 {
		return entity.MovementOut
	}
	return entity.MovementIn
}

// Apply calcula la nueva fila tras sumar delta. No muta row.
//   - new_qty < 0 -> InvariantViolation
//   - decremento mayor que lo disponible (quantity - reserved) -> InsufficientStock
func Apply(row entity.StockRow, delta int64) (entity.StockRow, error) {
	newQty := row.Quantity + delta
	if newQty < 0 {
		return row, domain.NewInvariant("el stock no puede quedar negativo")
	}
	if delta < 0 && -delta > row.Available() {
		return row, domain.NewInsufficientStock(row.Available(), -delta)
	}
	row.Quantity = newQty
	return row, nil
}

// Reserve mueve qty de disponible a reservado.
func Reserve(row entity.StockRow, qty int64) (entity.StockRow, error) {
	if qty <= 0 {
		return row, domain.NewValidation(map[string]string{"quantity": "debe ser mayor que 0"})
	}
	if qty > row.Available() {
		return row, domain.NewInsufficientStock(row.Available(), qty)
	}
	row.Reserved += qty
	return row, nil
}

// Release devuelve qty de reservado a disponible.
func Release(row entity.StockRow, qty int64) (entity.StockRow, error) {
	if qty <= 0 {
		return row, domain.NewValidation(map[string]string{"quantity": "debe ser mayor que 0"})
	}
	if qty > row.Reserved {
		return row, domain.NewInvariant("no se puede liberar más de lo reservado")
	}
	row.Reserved -= qty
	return row, nil
}

// CheckRow valida 0 <= reserved <= quantity.
func CheckRow(row entity.StockRow) error {
	if row.Quantity < 0 || row.Reserved < 0 || row.Reserved > row.Quantity {
		return domain.NewInvariant("fila de stock inconsistente")
	}
	return nil
}

// Cell identifica una fila de stock para ordenar los bloqueos.
type Cell struct {
	WarehouseID int64
	ProductID   int64
}

// LockOrder ordena las celdas por (warehouse_id, product_id) ascendente y elimina duplicados.
// Toda operación que bloquee más de una fila debe seguir este orden.
func LockOrder(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	copy(out, cells)
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ProductID < out[j].ProductID
	})
	uniq := out[:0]
	for i, c := range out {
		if i == 0 || c != out[i-1] {
			uniq = append(uniq, c)
		}
	}
	return uniq
}
