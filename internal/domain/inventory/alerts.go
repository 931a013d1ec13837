package inventory

import "github.com/jhoicas/Boutique-api/internal/domain/entity"

// Niveles de alerta de stock.
const (
	AlertNone = ""
	AlertLow  = "low"
	AlertOut  = "out"
)

// AlertLevel clasifica una fila respecto al mínimo del producto:
// low si 0 < quantity < min_stock; out si quantity = 0 y min_stock > 0.
func AlertLevel(row entity.StockRow, minStock int64) string {
	switch {
	case row.Quantity == 0 && minStock > 0:
		return AlertOut
	case row.Quantity > 0 && row.Quantity < minStock:
		return AlertLow
	default:
		return AlertNone
	}
}
