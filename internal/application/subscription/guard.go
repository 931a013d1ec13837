package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Guard admisión por plan. Se invoca dentro de la transacción de la mutación, antes de mutar.
type Guard struct {
	catalog *Catalog
	tracker *Tracker
	metrics ports.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewGuard construye el guard.
func NewGuard(catalog *Catalog, tracker *Tracker, metrics ports.Metrics, log zerolog.Logger) *Guard {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Guard{catalog: catalog, tracker: tracker, metrics: metrics, log: log, now: tracker.now}
}

// EffectivePlan plan usado para admitir: el de la suscripción si está activa y vigente; si no, Free.
func (g *Guard) EffectivePlan(ctx context.Context, uow repository.UnitOfWork, tenantID string) (*entity.Plan, *entity.Subscription, error) {
	return g.effectivePlan(ctx, uow, tenantID, false)
}

// effectivePlan con lock toma la fila de la suscripción FOR UPDATE.
func (g *Guard) effectivePlan(ctx context.Context, uow repository.UnitOfWork, tenantID string, lock bool) (*entity.Plan, *entity.Subscription, error) {
	read := uow.Subscriptions().GetByTenant
	if lock {
		read = uow.Subscriptions().GetForUpdate
	}
	sub, err := read(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("guard: suscripción: %w", err)
	}
	if sub == nil || !sub.IsEffective(g.now()) {
		return g.catalog.Free(), sub, nil
	}
	if p, ok := g.catalog.ByID(sub.PlanID); ok {
		return p, sub, nil
	}
	return g.catalog.Free(), sub, nil
}

// Admit devuelve nil si la acción está permitida para el tenant. Un create con tope
// bloquea la fila de la suscripción antes de contar: dos altas concurrentes del mismo
// tenant se serializan y la segunda ve el recurso creado por la primera.
func (g *Guard) Admit(ctx context.Context, uow repository.UnitOfWork, tenantID string, a quota.Action) error {
	if tenantID == "" {
		return domain.Errorf(domain.ErrForbidden, "operación sin entreprise")
	}
	lock := a.Resource != "" && a.Verb == quota.VerbCreate
	plan, _, err := g.effectivePlan(ctx, uow, tenantID, lock)
	if err != nil {
		return err
	}
	usage := quota.Counters{}
	if a.Resource != "" && (a.Verb == quota.VerbCreate || a.Verb == quota.VerbUpdate) {
		n, err := g.tracker.Count(ctx, uow, tenantID, a.Resource)
		if err != nil {
			return err
		}
		usage[a.Resource] = n
	}
	if err := quota.Decide(plan.Limits, plan.Features, usage, a); err != nil {
		label := string(a.Feature)
		if a.Resource != "" {
			label = string(a.Resource)
		}
		g.metrics.QuotaDenied(label)
		g.log.Debug().Str("tenant", tenantID).Str("plan", plan.Name).Str("recurso", label).Err(err).Msg("admisión denegada")
		return err
	}
	return nil
}

// Feature indica si la bandera está activa en el plan efectivo.
func (g *Guard) Feature(ctx context.Context, uow repository.UnitOfWork, tenantID string, f quota.Feature) (bool, error) {
	plan, _, err := g.EffectivePlan(ctx, uow, tenantID)
	if err != nil {
		return false, err
	}
	return plan.Features.Enabled(f), nil
}
