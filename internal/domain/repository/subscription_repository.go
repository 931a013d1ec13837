package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// PlanRepository catálogo de planes.
type PlanRepository interface {
	List(ctx context.Context) ([]*entity.Plan, error)
	Upsert(ctx context.Context, p *entity.Plan) error
}

// SubscriptionRepository una suscripción por tenant.
type SubscriptionRepository interface {
	GetByTenant(ctx context.Context, tenantID string) (*entity.Subscription, error)
	GetForUpdate(ctx context.Context, tenantID string) (*entity.Subscription, error)
	// CreateIfAbsent inserta si no existe fila para el tenant; devuelve false si ya existía.
	CreateIfAbsent(ctx context.Context, s *entity.Subscription) (bool, error)
	Update(ctx context.Context, s *entity.Subscription) error
	ListAll(ctx context.Context) ([]*entity.Subscription, error)
}

// UsageRepository filas de uso por (tenant, periodo).
type UsageRepository interface {
	Get(ctx context.Context, tenantID string, period time.Time) (*entity.Usage, error)
	// Ensure crea la fila del periodo si falta (contador mensual en 0, acumulado arrastrado). Idempotente.
	Ensure(ctx context.Context, tenantID string, period time.Time) (*entity.Usage, error)
	IncrementInvoices(ctx context.Context, tenantID string, period time.Time) error
}
