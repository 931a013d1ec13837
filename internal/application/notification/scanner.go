package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Días restantes en los que se avisa.
var (
	TrialReminderDays  = []int{7, 3, 1}
	ExpiryReminderDays = []int{30, 7, 1}
)

// Scanner recorre los tenants activos y encola los avisos programados.
type Scanner struct {
	store   repository.Store
	manager *subscription.Manager
	guard   *subscription.Guard
	tracker *subscription.Tracker
	log     zerolog.Logger
	now     func() time.Time
}

// NewScanner construye el scanner. now nil = time.Now.
func NewScanner(store repository.Store, manager *subscription.Manager, guard *subscription.Guard,
	tracker *subscription.Tracker, log zerolog.Logger, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	return &Scanner{store: store, manager: manager, guard: guard, tracker: tracker, log: log, now: now}
}

// run estado de una pasada: claves ya disparadas en este ciclo.
type run struct {
	fired  map[string]struct{}
	report dto.NotificationReport
}

func (r *run) once(key string) bool {
	if _, ok := r.fired[key]; ok {
		return false
	}
	r.fired[key] = struct{}{}
	return true
}

// Scan ejecuta las familias pedidas. Sin ninguna marcada se ejecutan todas.
func (s *Scanner) Scan(ctx context.Context, req dto.SendNotificationsRequest) (*dto.NotificationReport, error) {
	if !req.Stock && !req.Subscription && !req.Summary {
		req = dto.SendNotificationsRequest{Stock: true, Subscription: true, Summary: true}
	}
	r := &run{fired: map[string]struct{}{}}
	if req.Subscription && s.manager != nil {
		n, err := s.manager.ExpireOverdue(ctx)
		if err != nil {
			return nil, err
		}
		r.report.Expired = n
	}
	tenants, err := s.store.Tenants().ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("notificaciones: tenants: %w", err)
	}
	r.report.Tenants = len(tenants)
	for _, id := range tenants {
		if err := ctx.Err(); err != nil {
			return &r.report, err
		}
		before := r.report
		err := s.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			admins, err := recipients(ctx, uow, id)
			if err != nil || len(admins) == 0 {
				return err
			}
			if req.Stock {
				if err := s.stock(ctx, uow, r, id, admins); err != nil {
					return err
				}
			}
			if req.Subscription {
				if err := s.lifecycle(ctx, uow, r, id, admins); err != nil {
					return err
				}
				if err := s.limits(ctx, uow, r, id, admins); err != nil {
					return err
				}
			}
			if req.Summary {
				return s.summary(ctx, uow, r, id, admins)
			}
			return nil
		})
		if err != nil {
			// Un tenant con error no bloquea al resto.
			r.report = before
			s.log.Error().Err(err).Str("tenant", id).Msg("pasada de notificaciones")
		}
	}
	s.log.Info().Int("tenants", r.report.Tenants).Int("stock", r.report.StockAlerts).
		Int("lifecycle", r.report.Lifecycle).Int("limits", r.report.LimitWarning).
		Int("summaries", r.report.Summaries).Int("expired", r.report.Expired).Msg("pasada de notificaciones completa")
	return &r.report, nil
}

// recipients superadmins activos del tenant; si no hay, el email de la entreprise.
func recipients(ctx context.Context, uow repository.UnitOfWork, tenantID string) ([]string, error) {
	users, err := uow.Users().ListByRole(ctx, tenantID, entity.RoleSuperadmin)
	if err != nil {
		return nil, fmt.Errorf("destinatarios: %w", err)
	}
	var out []string
	for _, u := range users {
		if u.Email != "" {
			out = append(out, u.Email)
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	t, err := uow.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("destinatarios: %w", err)
	}
	if t != nil && t.Email != "" {
		out = append(out, t.Email)
	}
	return out, nil
}

func (s *Scanner) stock(ctx context.Context, uow repository.UnitOfWork, r *run, tenantID string, to []string) error {
	low, out, err := inventory.Alerts(ctx, uow.Stocks(), tenantID)
	if err != nil {
		return err
	}
	for _, group := range []struct {
		kind string
		rows []*repository.StockView
	}{{entity.NotifyStockLow, low}, {entity.NotifyStockOut, out}} {
		if len(group.rows) == 0 || !r.once(tenantID+"|"+group.kind) {
			continue
		}
		lines := make([]outbox.StockLine, 0, len(group.rows))
		for _, v := range group.rows {
			lines = append(lines, outbox.StockLine{
				SKU: v.ProductSKU, Product: v.ProductName, Warehouse: v.WarehouseName, Quantity: v.Quantity, MinStock: v.MinStock,
			})
		}
		if err := outbox.Enqueue(ctx, uow, outbox.StockAlert(tenantID, group.kind, to, lines)); err != nil {
			return err
		}
		r.report.StockAlerts++
	}
	return nil
}

func contains(days []int, d int) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// lifecycle avisos de fin de prueba y de vencimiento; cada aviso se registra en el log
// mensual para no repetirse entre pasadas.
func (s *Scanner) lifecycle(ctx context.Context, uow repository.UnitOfWork, r *run, tenantID string, to []string) error {
	sub, err := uow.Subscriptions().GetByTenant(ctx, tenantID)
	if err != nil || sub == nil || sub.Status != entity.SubscriptionActive {
		return err
	}
	now := s.now()
	period := entity.PeriodOf(now)
	if sub.InTrial(now) {
		d := *sub.TrialDaysLeft(now)
		if !contains(TrialReminderDays, d) {
			return nil
		}
		return s.fire(ctx, uow, r, tenantID, fmt.Sprintf("trial:%d", d), period, outbox.TrialEnding(tenantID, to, d), &r.report.Lifecycle)
	}
	if left := sub.DaysUntilExpiry(now); left != nil && contains(ExpiryReminderDays, *left) {
		return s.fire(ctx, uow, r, tenantID, fmt.Sprintf("expiry:%d:%s", *left, sub.EndAt.Format("20060102")),
			period, outbox.ExpiryWarning(tenantID, to, *left), &r.report.Lifecycle)
	}
	return nil
}

// limits un aviso por recurso con el umbral más alto recién cruzado; todos los umbrales
// cruzados quedan marcados para el mes.
func (s *Scanner) limits(ctx context.Context, uow repository.UnitOfWork, r *run, tenantID string, to []string) error {
	plan, _, err := s.guard.EffectivePlan(ctx, uow, tenantID)
	if err != nil {
		return err
	}
	counters, _, err := s.tracker.Snapshot(ctx, uow, tenantID)
	if err != nil {
		return err
	}
	period := entity.PeriodOf(s.now())
	for _, res := range quota.Resources {
		lim := plan.LimitFor(res)
		highest := 0
		for _, t := range quota.Crossed(lim, counters[res]) {
			key := fmt.Sprintf("limit:%s:%d", res, t)
			if !r.once(tenantID + "|" + key) {
				continue
			}
			fresh, err := uow.NotificationLog().Mark(ctx, tenantID, key, period)
			if err != nil {
				return fmt.Errorf("log de avisos: %w", err)
			}
			if fresh && t > highest {
				highest = t
			}
		}
		if highest == 0 {
			continue
		}
		m := outbox.LimitWarning(tenantID, to, res.Label(), highest, counters[res], lim.Value())
		if err := outbox.Enqueue(ctx, uow, m); err != nil {
			return err
		}
		r.report.LimitWarning++
	}
	return nil
}

func (s *Scanner) summary(ctx context.Context, uow repository.UnitOfWork, r *run, tenantID string, to []string) error {
	if !r.once(tenantID + "|summary") {
		return nil
	}
	plan, _, err := s.guard.EffectivePlan(ctx, uow, tenantID)
	if err != nil {
		return err
	}
	counters, usage, err := s.tracker.Snapshot(ctx, uow, tenantID)
	if err != nil {
		return err
	}
	lines := []string{fmt.Sprintf("Plan : %s", plan.Display), fmt.Sprintf("Période : %s", usage.Period.Format("2006-01"))}
	for _, res := range quota.Resources {
		lines = append(lines, fmt.Sprintf("%s : %d / %s", res.Label(), counters[res], plan.LimitFor(res)))
	}
	lines = append(lines, fmt.Sprintf("Factures depuis l'ouverture : %d", usage.InvoicesTotal))
	if err := outbox.Enqueue(ctx, uow, outbox.Summary(tenantID, to, lines)); err != nil {
		return err
	}
	r.report.Summaries++
	return nil
}

func (s *Scanner) fire(ctx context.Context, uow repository.UnitOfWork, r *run, tenantID, key string, period time.Time,
	m *entity.OutboxMessage, counter *int) error {
	if !r.once(tenantID + "|" + key) {
		return nil
	}
	fresh, err := uow.NotificationLog().Mark(ctx, tenantID, key, period)
	if err != nil {
		return fmt.Errorf("log de avisos: %w", err)
	}
	if !fresh {
		return nil
	}
	if err := outbox.Enqueue(ctx, uow, m); err != nil {
		return err
	}
	*counter++
	return nil
}
