package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Direction sentido de un cambio de plan.
type Direction string

const (
	DirectionUpgrade   Direction = "upgrade"
	DirectionDowngrade Direction = "downgrade"
	// DirectionAny deduce el sentido comparando precios (change_plan).
	DirectionAny Direction = "change"
)

// Options parámetros del ciclo de vida.
type Options struct {
	TrialDays         int
	BillingPeriodDays int
}

// Manager ciclo de vida de las suscripciones.
type Manager struct {
	store   repository.Store
	catalog *Catalog
	tracker *Tracker
	guard   *Guard
	cache   ports.CacheInvalidator
	log     zerolog.Logger
	opts    Options
	now     func() time.Time
}

// NewManager construye el manager. El reloj es el del tracker.
func NewManager(store repository.Store, catalog *Catalog, tracker *Tracker, guard *Guard, cache ports.CacheInvalidator, log zerolog.Logger, opts Options) *Manager {
	if opts.TrialDays <= 0 {
		opts.TrialDays = 14
	}
	if opts.BillingPeriodDays <= 0 {
		opts.BillingPeriodDays = 30
	}
	if cache == nil {
		cache = ports.NopInvalidator{}
	}
	return &Manager{store: store, catalog: catalog, tracker: tracker, guard: guard, cache: cache, log: log, opts: opts, now: tracker.now}
}

// Catalog catálogo en uso.
func (m *Manager) Catalog() *Catalog { return m.catalog }

// EnsureInTx crea la suscripción Free con periodo de prueba si el tenant no tiene ninguna.
func (m *Manager) EnsureInTx(ctx context.Context, uow repository.UnitOfWork, tenantID string) (*entity.Subscription, error) {
	if s, err := uow.Subscriptions().GetForUpdate(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("subscription: %w", err)
	} else if s != nil {
		return s, nil
	}
	free, ok := m.catalog.Get(entity.PlanFree)
	if !ok {
		return nil, domain.Errorf(domain.ErrNotFound, "plan %s no configurado", entity.PlanFree)
	}
	now := m.now()
	trialEnd := now.AddDate(0, 0, m.opts.TrialDays)
	s := &entity.Subscription{
		TenantID:      tenantID,
		PlanID:        free.ID,
		Status:        entity.SubscriptionActive,
		StartAt:       now,
		TrialEndAt:    &trialEnd,
		BillingPeriod: entity.BillingMonthly,
		AutoRenew:     true,
	}
	if _, err := uow.Subscriptions().CreateIfAbsent(ctx, s); err != nil {
		return nil, fmt.Errorf("subscription: crear: %w", err)
	}
	// Otra transacción pudo crearla primero; se devuelve la fila persistida.
	got, err := uow.Subscriptions().GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("subscription: %w", err)
	}
	return got, nil
}

// Ensure versión transaccional propia de EnsureInTx.
func (m *Manager) Ensure(ctx context.Context, tenantID string) (*entity.Subscription, error) {
	var out *entity.Subscription
	err := m.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := m.EnsureInTx(ctx, uow, tenantID)
		out = s
		return err
	})
	return out, err
}

// target tenant sobre el que actúa el llamante. Un usuario de tenant solo actúa sobre el suyo.
func target(sc entity.SecurityContext, requested string) (string, error) {
	if sc.IsPlatformAdmin() {
		if requested == "" {
			return "", domain.NewValidation(map[string]string{"entreprise": "requerido para el operador de plataforma"})
		}
		return requested, nil
	}
	if sc.TenantID == "" {
		return "", domain.ErrForbidden
	}
	return sc.TenantID, nil
}

// Current suscripción vigente. Si no existe se crea (Free + prueba).
func (m *Manager) Current(ctx context.Context, sc entity.SecurityContext, requested string) (*dto.SubscriptionResponse, error) {
	tenantID, err := target(sc, requested)
	if err != nil {
		return nil, err
	}
	s, err := m.Ensure(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := m.Response(s)
	return &resp, nil
}

// Response vista pública de una suscripción.
func (m *Manager) Response(s *entity.Subscription) dto.SubscriptionResponse {
	plan, ok := m.catalog.ByID(s.PlanID)
	if !ok {
		plan = m.catalog.Free()
	}
	now := m.now()
	return dto.SubscriptionResponse{
		TenantID:        s.TenantID,
		Plan:            dto.PlanFromEntity(plan),
		Status:          s.Status,
		StartAt:         s.StartAt,
		EndAt:           s.EndAt,
		TrialEndAt:      s.TrialEndAt,
		BillingPeriod:   s.BillingPeriod,
		AutoRenew:       s.AutoRenew,
		Price:           Price(s, plan),
		DaysUntilExpiry: s.DaysUntilExpiry(now),
		TrialDaysLeft:   s.TrialDaysLeft(now),
		Effective:       s.IsEffective(now),
	}
}

// Price precio de la suscripción según su periodo de facturación.
func Price(s *entity.Subscription, plan *entity.Plan) decimal.Decimal {
	return plan.PriceFor(s.BillingPeriod)
}

// Plans planes activos.
func (m *Manager) Plans() []dto.PlanResponse {
	plans := m.catalog.ListActive()
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, dto.PlanFromEntity(p))
	}
	return out
}

func canManage(sc entity.SecurityContext) bool {
	return sc.Role == entity.RoleSuperadmin
}

// ChangePlan cambia el plan del tenant. El sentido pedido debe coincidir con la comparación
// de precios mensuales; en upgrade end_at avanza un periodo de facturación.
func (m *Manager) ChangePlan(ctx context.Context, sc entity.SecurityContext, req dto.ChangePlanRequest, dir Direction) (*dto.ChangePlanResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !canManage(sc) {
		return nil, domain.ErrForbidden
	}
	tenantID, err := target(sc, req.Entreprise)
	if err != nil {
		return nil, err
	}
	newPlan, ok := m.catalog.Resolve(req.Plan)
	if !ok || !newPlan.Active {
		return nil, domain.Errorf(domain.ErrNotFound, "plan %q no encontrado", req.Plan)
	}

	var (
		out     dto.ChangePlanResponse
		oldName string
	)
	err = m.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := m.EnsureInTx(ctx, uow, tenantID)
		if err != nil {
			return err
		}
		oldPlan, ok := m.catalog.ByID(s.PlanID)
		if !ok {
			oldPlan = m.catalog.Free()
		}
		if oldPlan.ID == newPlan.ID {
			return domain.NewValidation(map[string]string{"plan": "ya es el plan actual"})
		}
		cmp := newPlan.MonthlyPrice.Cmp(oldPlan.MonthlyPrice)
		switch {
		case dir == DirectionUpgrade && cmp <= 0:
			return domain.NewValidation(map[string]string{"plan": "un upgrade requiere un plan más caro"})
		case dir == DirectionDowngrade && cmp >= 0:
			return domain.NewValidation(map[string]string{"plan": "un downgrade requiere un plan más barato"})
		case dir == DirectionAny && cmp == 0:
			return domain.NewValidation(map[string]string{"plan": "el plan tiene el mismo precio"})
		}
		now := m.now()
		s.PlanID = newPlan.ID
		s.Status = entity.SubscriptionActive
		if req.BillingPeriod != "" {
			s.BillingPeriod = req.BillingPeriod
		}
		if cmp > 0 {
			base := now
			if s.EndAt != nil && s.EndAt.After(now) {
				base = *s.EndAt
			}
			end := base.AddDate(0, 0, m.opts.BillingPeriodDays)
			s.EndAt = &end
		}
		if err := uow.Subscriptions().Update(ctx, s); err != nil {
			return fmt.Errorf("subscription: actualizar: %w", err)
		}
		oldName = oldPlan.Name
		if err := audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditSubscriptionChange,
			fmt.Sprintf("plan %s → %s", oldPlan.Name, newPlan.Name), nil,
			map[string]string{"old_plan": oldPlan.Name, "new_plan": newPlan.Name, "direction": string(dir)}); err != nil {
			return err
		}
		if err := m.notifyPlanChanged(ctx, uow, tenantID, oldPlan, newPlan); err != nil {
			return err
		}
		out.Subscription = m.Response(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.invalidate(ctx, tenantID)
	out.OldPlan = oldName
	out.NewPlan = newPlan.Name
	m.log.Info().Str("tenant", tenantID).Str("old", oldName).Str("new", newPlan.Name).Msg("plan cambiado")
	return &out, nil
}

func (m *Manager) notifyPlanChanged(ctx context.Context, uow repository.UnitOfWork, tenantID string, oldPlan, newPlan *entity.Plan) error {
	tenant, err := uow.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("subscription: tenant: %w", err)
	}
	if tenant == nil {
		return domain.ErrNotFound
	}
	admins, err := uow.Users().ListByRole(ctx, tenantID, entity.RoleSuperadmin)
	if err != nil {
		return fmt.Errorf("subscription: superadmins: %w", err)
	}
	to := make([]string, 0, len(admins)+1)
	for _, u := range admins {
		to = append(to, u.Email)
	}
	to = append(to, tenant.Email)
	return outbox.Enqueue(ctx, uow, outbox.PlanChanged(tenant, to, oldPlan, newPlan))
}

// Extend empuja end_at days días (desde now si estaba vacío).
func (m *Manager) Extend(ctx context.Context, sc entity.SecurityContext, req dto.ExtendRequest) (*dto.SubscriptionResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !canManage(sc) {
		return nil, domain.ErrForbidden
	}
	tenantID, err := target(sc, req.Entreprise)
	if err != nil {
		return nil, err
	}
	var out dto.SubscriptionResponse
	err = m.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := m.EnsureInTx(ctx, uow, tenantID)
		if err != nil {
			return err
		}
		base := m.now()
		if s.EndAt != nil {
			base = *s.EndAt
		}
		end := base.AddDate(0, 0, req.Days)
		s.EndAt = &end
		if s.Status == entity.SubscriptionExpired && end.After(m.now()) {
			s.Status = entity.SubscriptionActive
		}
		if err := uow.Subscriptions().Update(ctx, s); err != nil {
			return fmt.Errorf("subscription: actualizar: %w", err)
		}
		if err := audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditSubscriptionExt,
			fmt.Sprintf("extensión de %d días", req.Days), nil, map[string]any{"days": req.Days, "end_at": end}); err != nil {
			return err
		}
		out = m.Response(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.invalidate(ctx, tenantID)
	return &out, nil
}

// ExpireOverdue marca expired las suscripciones activas cuyo end_at pasó. Devuelve cuántas.
func (m *Manager) ExpireOverdue(ctx context.Context) (int, error) {
	n := 0
	var expired []string
	err := m.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions().ListAll(ctx)
		if err != nil {
			return err
		}
		now := m.now()
		for _, s := range subs {
			if s.Status != entity.SubscriptionActive || s.EndAt == nil || now.Before(*s.EndAt) {
				continue
			}
			s.Status = entity.SubscriptionExpired
			if err := uow.Subscriptions().Update(ctx, s); err != nil {
				return err
			}
			expired = append(expired, s.TenantID)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("subscription: expirar: %w", err)
	}
	for _, t := range expired {
		m.invalidate(ctx, t)
		n++
	}
	return n, nil
}

func (m *Manager) invalidate(ctx context.Context, tenantID string) {
	if err := m.cache.InvalidateTenant(ctx, tenantID, ports.AllEndpoints...); err != nil {
		m.log.Warn().Err(err).Str("tenant", tenantID).Msg("invalidación de caché fallida")
	}
}

// Limits topes y banderas del plan efectivo.
func (m *Manager) Limits(ctx context.Context, sc entity.SecurityContext, requested string) (*dto.LimitsResponse, error) {
	tenantID, err := target(sc, requested)
	if err != nil {
		return nil, err
	}
	plan, _, err := m.guard.EffectivePlan(ctx, m.store, tenantID)
	if err != nil {
		return nil, err
	}
	pr := dto.PlanFromEntity(plan)
	return &dto.LimitsResponse{Plan: plan.Name, Limits: pr.Limits, Features: pr.Features}, nil
}

// Usage snapshot de uso con los topes del plan efectivo.
func (m *Manager) Usage(ctx context.Context, sc entity.SecurityContext, requested string) (*dto.UsageResponse, error) {
	tenantID, err := target(sc, requested)
	if err != nil {
		return nil, err
	}
	var out dto.UsageResponse
	err = m.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		plan, _, err := m.guard.EffectivePlan(ctx, uow, tenantID)
		if err != nil {
			return err
		}
		counters, usage, err := m.tracker.Snapshot(ctx, uow, tenantID)
		if err != nil {
			return err
		}
		out = dto.UsageResponse{TenantID: tenantID, Period: usage.Period, InvoicesTotal: usage.InvoicesTotal}
		for _, r := range quota.Resources {
			out.Resources = append(out.Resources, limitStatus(r, counters[r], plan.LimitFor(r)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func limitStatus(r quota.Resource, current int64, lim quota.Limit) dto.LimitStatus {
	return dto.LimitStatus{
		Resource:  string(r),
		Current:   current,
		Limit:     lim,
		Allowed:   lim.Allows(current),
		Percent:   lim.Ratio(current),
		Unlimited: lim.IsUnlimited(),
	}
}

// CheckLimit indica si se admitiría crear una unidad más del recurso.
func (m *Manager) CheckLimit(ctx context.Context, sc entity.SecurityContext, req dto.CheckLimitRequest) (*dto.LimitStatus, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	r, ok := quota.ParseResource(req.Resource)
	if !ok {
		return nil, domain.NewValidation(map[string]string{"resource": "recurso desconocido"})
	}
	tenantID, err := target(sc, "")
	if err != nil {
		return nil, err
	}
	var out dto.LimitStatus
	err = m.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		plan, _, err := m.guard.EffectivePlan(ctx, uow, tenantID)
		if err != nil {
			return err
		}
		n, err := m.tracker.Count(ctx, uow, tenantID, r)
		if err != nil {
			return err
		}
		out = limitStatus(r, n, plan.LimitFor(r))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckFeature consulta una bandera del plan efectivo.
func (m *Manager) CheckFeature(ctx context.Context, sc entity.SecurityContext, req dto.CheckFeatureRequest) (*dto.CheckFeatureResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	f, ok := quota.ParseFeature(req.Feature)
	if !ok {
		return nil, domain.NewValidation(map[string]string{"feature": "funcionalidad desconocida"})
	}
	tenantID, err := target(sc, "")
	if err != nil {
		return nil, err
	}
	enabled, err := m.guard.Feature(ctx, m.store, tenantID, f)
	if err != nil {
		return nil, err
	}
	return &dto.CheckFeatureResponse{Feature: string(f), Enabled: enabled}, nil
}
