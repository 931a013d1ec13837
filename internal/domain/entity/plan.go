package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain/quota"
)

// Nombres internos de plan.
const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPremium = "premium"
	PlanOrg     = "org"
)

// Periodos de facturación de una suscripción.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// YearlyDiscount descuento aplicado al precio anual.
var YearlyDiscount = decimal.RequireFromString("0.10")

// Plan paquete inmutable de topes y banderas. Los topes ya vienen normalizados (ver quota.FromRaw).
type Plan struct {
	ID           int64
	Name         string
	Display      string
	MonthlyPrice decimal.Decimal
	YearlyPrice  decimal.Decimal
	Limits       quota.Limits
	Features     quota.Flags
	AlertLevel   string
	SupportLevel string
	Active       bool
	SortOrder    int
	UpdatedAt    time.Time
}

// LimitFor tope del plan para r.
func (p *Plan) LimitFor(r quota.Resource) quota.Limit {
	return p.Limits.For(r)
}

// PriceFor precio según periodo: mensual sin cambio; anual con 10% de descuento sobre el precio anual.
func (p *Plan) PriceFor(period string) decimal.Decimal {
	if period == BillingYearly {
		return p.YearlyPrice.Mul(decimal.NewFromInt(1).Sub(YearlyDiscount)).Round(2)
	}
	return p.MonthlyPrice
}
