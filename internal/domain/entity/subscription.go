package entity

import "time"

// Estados de suscripción.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
	SubscriptionSuspended = "suspended"
)

// Subscription vínculo tenant -> plan. Única por tenant.
type Subscription struct {
	ID            int64
	TenantID      string
	PlanID        int64
	Status        string
	StartAt       time.Time
	EndAt         *time.Time
	TrialEndAt    *time.Time
	BillingPeriod string
	AutoRenew     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const day = 24 * time.Hour

// DaysUntilExpiry max(0, floor((end_at - now)/día)); nil si no hay end_at.
func (s *Subscription) DaysUntilExpiry(now time.Time) *int {
	if s.EndAt == nil {
		return nil
	}
	return daysLeft(*s.EndAt, now)
}

// TrialDaysLeft igual que DaysUntilExpiry pero sobre trial_end_at.
func (s *Subscription) TrialDaysLeft(now time.Time) *int {
	if s.TrialEndAt == nil {
		return nil
	}
	return daysLeft(*s.TrialEndAt, now)
}

func daysLeft(end, now time.Time) *int {
	d := int(end.Sub(now) / day)
	if d < 0 {
		d = 0
	}
	return &d
}

// InTrial indica si la suscripción sigue dentro de la ventana de prueba.
func (s *Subscription) InTrial(now time.Time) bool {
	return s.TrialEndAt != nil && now.Before(*s.TrialEndAt)
}

// IsEffective activa y sin end_at vencido. Una suscripción no efectiva se admite con topes Free.
func (s *Subscription) IsEffective(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.EndAt == nil || now.Before(*s.EndAt)
}
