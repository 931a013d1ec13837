package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain"
)

// LineInput datos de una línea antes de persistir.
type LineInput struct {
	Qty           int64
	UnitPrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Justification string
}

// ValidateLine reglas de línea: qty > 0, unit_price >= purchase_price y justificación
// obligatoria cuando el precio difiere del precio de venta del catálogo.
func ValidateLine(field string, in LineInput) error {
	if in.Qty <= 0 {
		return domain.NewValidation(map[string]string{field + ".qty": "debe ser mayor que 0"})
	}
	if in.UnitPrice.IsNegative() {
		return domain.NewValidation(map[string]string{field + ".unit_price": "no puede ser negativo"})
	}
	if in.UnitPrice.LessThan(in.PurchasePrice) {
		return domain.NewValidation(map[string]string{
			field + ".unit_price": "el precio de venta no puede ser inferior al precio de compra (" + in.PurchasePrice.StringFixed(2) + ")",
		})
	}
	if !in.UnitPrice.Equal(in.SalePrice) && strings.TrimSpace(in.Justification) == "" {
		return domain.NewValidation(map[string]string{
			field + ".price_justification": "obligatoria cuando el precio difiere del precio de catálogo",
		})
	}
	return nil
}

// LineTotal qty * unit_price.
func LineTotal(qty int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(qty))
}
