package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// Status función canónica del estado: cancelled manda; outstanding 0 con total > 0 es paid;
// outstanding = total es pending; cualquier otro saldo es partial.
func Status(total, outstanding decimal.Decimal, cancelled bool) string {
	switch {
	case cancelled:
		return entity.InvoiceStatusCancelled
	case outstanding.IsZero() && total.IsPositive():
		return entity.InvoiceStatusPaid
	case outstanding.Equal(total):
		return entity.InvoiceStatusPending
	default:
		return entity.InvoiceStatusPartial
	}
}

// ApplyPayment valida el pago y devuelve el nuevo saldo y estado.
func ApplyPayment(inv *entity.Invoice, amount decimal.Decimal) (decimal.Decimal, string, error) {
	if !amount.IsPositive() {
		return inv.Outstanding, inv.Status, domain.NewValidation(map[string]string{"amount": "debe ser mayor que 0"})
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return inv.Outstanding, inv.Status, domain.NewInvariant("la factura está cancelada")
	}
	if amount.GreaterThan(inv.Outstanding) {
		return inv.Outstanding, inv.Status, domain.Errorf(domain.ErrInvariantViolation,
			"el pago %s excede el saldo pendiente %s", amount.StringFixed(2), inv.Outstanding.StringFixed(2))
	}
	out := inv.Outstanding.Sub(amount)
	return out, Status(inv.Total, out, false), nil
}
