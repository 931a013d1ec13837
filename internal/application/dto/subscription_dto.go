package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
)

// PlanResponse salida de un plan.
type PlanResponse struct {
	ID           int64                  `json:"id"`
	Name         string                 `json:"name"`
	Display      string                 `json:"display"`
	MonthlyPrice decimal.Decimal        `json:"monthly_price"`
	YearlyPrice  decimal.Decimal        `json:"yearly_price"`
	Limits       map[string]quota.Limit `json:"limits"`
	Features     map[string]bool        `json:"features"`
	AlertLevel   string                 `json:"alert_level"`
	SupportLevel string                 `json:"support_level"`
}

func PlanFromEntity(p *entity.Plan) PlanResponse {
	limits := make(map[string]quota.Limit, len(quota.Resources))
	for _, r := range quota.Resources {
		limits["max_"+string(r)] = p.LimitFor(r)
	}
	features := make(map[string]bool, len(quota.Features))
	for _, f := range quota.Features {
		features[string(f)] = p.Features.Enabled(f)
	}
	return PlanResponse{
		ID: p.ID, Name: p.Name, Display: p.Display, MonthlyPrice: p.MonthlyPrice, YearlyPrice: p.YearlyPrice,
		Limits: limits, Features: features, AlertLevel: p.AlertLevel, SupportLevel: p.SupportLevel,
	}
}

// SubscriptionResponse suscripción actual del tenant.
type SubscriptionResponse struct {
	TenantID        string          `json:"entreprise"`
	Plan            PlanResponse    `json:"plan"`
	Status          string          `json:"status"`
	StartAt         time.Time       `json:"start_at"`
	EndAt           *time.Time      `json:"end_at"`
	TrialEndAt      *time.Time      `json:"trial_end_at"`
	BillingPeriod   string          `json:"billing_period"`
	AutoRenew       bool            `json:"auto_renew"`
	Price           decimal.Decimal `json:"price"`
	DaysUntilExpiry *int            `json:"days_until_expiry"`
	TrialDaysLeft   *int            `json:"trial_days_left"`
	Effective       bool            `json:"effective"`
}

// ChangePlanRequest upgrade/downgrade/change_plan. Plan acepta id, nombre interno o display.
type ChangePlanRequest struct {
	Plan          string `json:"plan" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"omitempty,oneof=monthly yearly"`
	Entreprise    string `json:"entreprise"`
}

// ExtendRequest extensión de la suscripción en días.
type ExtendRequest struct {
	Days       int    `json:"days" validate:"required,gt=0,max=3650"`
	Entreprise string `json:"entreprise"`
}

// ChangePlanResponse resultado con el plan anterior (para notificación).
type ChangePlanResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	OldPlan      string               `json:"old_plan"`
	NewPlan      string               `json:"new_plan"`
}

// LimitStatus uso de un recurso respecto a su tope.
type LimitStatus struct {
	Resource  string      `json:"resource"`
	Current   int64       `json:"current"`
	Limit     quota.Limit `json:"limit"`
	Allowed   bool        `json:"allowed"`
	Percent   float64     `json:"percent"`
	Unlimited bool        `json:"unlimited"`
}

// UsageResponse snapshot de uso con topes.
type UsageResponse struct {
	TenantID      string        `json:"entreprise"`
	Period        time.Time     `json:"period"`
	InvoicesTotal int64         `json:"invoices_total"`
	Resources     []LimitStatus `json:"resources"`
}

// LimitsResponse topes y banderas efectivos.
type LimitsResponse struct {
	Plan     string                 `json:"plan"`
	Limits   map[string]quota.Limit `json:"limits"`
	Features map[string]bool        `json:"features"`
}

// CheckLimitRequest consulta de tope.
type CheckLimitRequest struct {
	Resource string `json:"resource" validate:"required"`
}

// CheckFeatureRequest consulta de bandera.
type CheckFeatureRequest struct {
	Feature string `json:"feature" validate:"required"`
}

// CheckFeatureResponse resultado de la consulta de bandera.
type CheckFeatureResponse struct {
	Feature string `json:"feature"`
	Enabled bool   `json:"enabled"`
}

// SendNotificationsRequest disparo manual del despachador.
type SendNotificationsRequest struct {
	Stock        bool `json:"stock"`
	Subscription bool `json:"subscription"`
	Summary      bool `json:"summary"`
}

// NotificationReport resumen de una pasada del despachador.
type NotificationReport struct {
	Tenants      int `json:"tenants"`
	StockAlerts  int `json:"stock_alerts"`
	Lifecycle    int `json:"lifecycle"`
	LimitWarning int `json:"limit_warnings"`
	Summaries    int `json:"summaries"`
	Expired      int `json:"expired"`
}
