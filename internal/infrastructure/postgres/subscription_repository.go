package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var (
	_ repository.PlanRepository         = (*PlanRepo)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
	_ repository.UsageRepository        = (*UsageRepo)(nil)
)

// PlanRepo catálogo de planes. Cada tope vive en su columna max_<recurso>; NULL = ilimitado.
type PlanRepo struct {
	q Querier
}

func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

func limitColumn(r quota.Resource) string { return "max_" + string(r) }

func planColumns() string {
	cols := []string{"id", "name", "display", "monthly_price", "yearly_price"}
	for _, r := range quota.Resources {
		cols = append(cols, limitColumn(r))
	}
	cols = append(cols, "features", "alert_level", "support_level", "active", "sort_order", "updated_at")
	return strings.Join(cols, ", ")
}

func scanPlan(row pgx.Row) (*entity.Plan, error) {
	var (
		p        entity.Plan
		raw      = make([]*int64, len(quota.Resources))
		features []byte
	)
	dest := []any{&p.ID, &p.Name, &p.Display, &p.MonthlyPrice, &p.YearlyPrice}
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	dest = append(dest, &features, &p.AlertLevel, &p.SupportLevel, &p.Active, &p.SortOrder, &p.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Limits = make(quota.Limits, len(quota.Resources))
	for i, r := range quota.Resources {
		p.Limits[r] = quota.FromRaw(raw[i])
	}
	p.Features = quota.Flags{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("features del plan %s: %w", p.Name, err)
		}
	}
	return &p, nil
}

func (r *PlanRepo) List(ctx context.Context) ([]*entity.Plan, error) {
	rows, err := r.q.Query(ctx, `SELECT `+planColumns()+` FROM subscription_plans ORDER BY sort_order, id`)
	if err != nil {
		return nil, mapErr("list plans", err)
	}
	return collect(rows, "list plans", scanPlan)
}

// Upsert por nombre interno; el ID existente se conserva.
func (r *PlanRepo) Upsert(ctx context.Context, p *entity.Plan) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("features del plan %s: %w", p.Name, err)
	}
	cols := []string{"name", "display", "monthly_price", "yearly_price"}
	args := []any{p.Name, p.Display, p.MonthlyPrice, p.YearlyPrice}
	for _, res := range quota.Resources {
		cols = append(cols, limitColumn(res))
		args = append(args, p.Limits.For(res).Raw())
	}
	cols = append(cols, "features", "alert_level", "support_level", "active", "sort_order")
	args = append(args, features, p.AlertLevel, p.SupportLevel, p.Active, p.SortOrder)

	marks := make([]string, len(cols))
	sets := make([]string, 0, len(cols)-1)
	for i, c := range cols {
		marks[i] = fmt.Sprintf("$%d", i+1)
		if c != "name" {
			sets = append(sets, c+" = EXCLUDED."+c)
		}
	}
	sql := `INSERT INTO subscription_plans (` + strings.Join(cols, ", ") + `, updated_at)
		VALUES (` + strings.Join(marks, ", ") + `, now())
		ON CONFLICT (name) DO UPDATE SET ` + strings.Join(sets, ", ") + `, updated_at = now()
		RETURNING id, updated_at`
	return mapErr("upsert plan", r.q.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.UpdatedAt))
}

// SubscriptionRepo una fila por tenant (UNIQUE tenant_id).
type SubscriptionRepo struct {
	q Querier
}

func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

const subscriptionColumns = `id, tenant_id, plan_id, status, start_at, end_at, trial_end_at, billing_period,
	auto_renew, created_at, updated_at`

func scanSubscription(row pgx.Row) (*entity.Subscription, error) {
	var s entity.Subscription
	err := row.Scan(&s.ID, &s.TenantID, &s.PlanID, &s.Status, &s.StartAt, &s.EndAt, &s.TrialEndAt,
		&s.BillingPeriod, &s.AutoRenew, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepo) GetByTenant(ctx context.Context, tenantID string) (*entity.Subscription, error) {
	s, err := scanSubscription(r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE tenant_id = $1`, tenantID))
	return noRows(s, "get subscription", err)
}

func (r *SubscriptionRepo) GetForUpdate(ctx context.Context, tenantID string) (*entity.Subscription, error) {
	s, err := scanSubscription(r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE tenant_id = $1 FOR UPDATE`, tenantID))
	return noRows(s, "lock subscription", err)
}

// CreateIfAbsent ON CONFLICT DO NOTHING: dos altas concurrentes dejan una sola fila.
func (r *SubscriptionRepo) CreateIfAbsent(ctx context.Context, s *entity.Subscription) (bool, error) {
	var planOK bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM subscription_plans WHERE id = $1)`, s.PlanID).Scan(&planOK); err != nil {
		return false, mapErr("create subscription", err)
	}
	if !planOK {
		return false, fmt.Errorf("plan %d: %w", s.PlanID, domain.ErrNotFound)
	}
	stamp(&s.CreatedAt)
	s.UpdatedAt = s.CreatedAt
	err := r.q.QueryRow(ctx, `
		INSERT INTO subscriptions (tenant_id, plan_id, status, start_at, end_at, trial_end_at, billing_period,
			auto_renew, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id) DO NOTHING
		RETURNING id`,
		s.TenantID, s.PlanID, s.Status, s.StartAt, s.EndAt, s.TrialEndAt, s.BillingPeriod, s.AutoRenew,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if v, err := noRows(s, "create subscription", err); err != nil {
		return false, err
	} else if v == nil {
		return false, nil
	}
	return true, nil
}

func (r *SubscriptionRepo) Update(ctx context.Context, s *entity.Subscription) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE subscriptions SET plan_id = $2, status = $3, start_at = $4, end_at = $5, trial_end_at = $6,
			billing_period = $7, auto_renew = $8, updated_at = now()
		WHERE tenant_id = $1`,
		s.TenantID, s.PlanID, s.Status, s.StartAt, s.EndAt, s.TrialEndAt, s.BillingPeriod, s.AutoRenew)
	if err != nil {
		return mapErr("update subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepo) ListAll(ctx context.Context) ([]*entity.Subscription, error) {
	rows, err := r.q.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY tenant_id`)
	if err != nil {
		return nil, mapErr("list subscriptions", err)
	}
	return collect(rows, "list subscriptions", scanSubscription)
}

// UsageRepo filas de uso por (tenant, periodo). period es DATE (primer día del mes).
type UsageRepo struct {
	q Querier
}

func NewUsageRepository(q Querier) *UsageRepo {
	return &UsageRepo{q: q}
}

const usageColumns = `tenant_id, period, invoices_this_period, invoices_total, updated_at`

func scanUsage(row pgx.Row) (*entity.Usage, error) {
	var u entity.Usage
	if err := row.Scan(&u.TenantID, &u.Period, &u.InvoicesThisPeriod, &u.InvoicesTotal, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Period = u.Period.UTC()
	return &u, nil
}

func (r *UsageRepo) Get(ctx context.Context, tenantID string, period time.Time) (*entity.Usage, error) {
	u, err := scanUsage(r.q.QueryRow(ctx, `
		SELECT `+usageColumns+` FROM usage_tracking WHERE tenant_id = $1 AND period = $2`, tenantID, period))
	return noRows(u, "get usage", err)
}

// Ensure inserta el periodo arrastrando invoices_total del periodo previo más reciente.
// ON CONFLICT DO NOTHING lo hace idempotente frente a dos rollovers simultáneos.
func (r *UsageRepo) Ensure(ctx context.Context, tenantID string, period time.Time) (*entity.Usage, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO usage_tracking (tenant_id, period, invoices_this_period, invoices_total, updated_at)
		SELECT $1, $2, 0, coalesce((
			SELECT invoices_total FROM usage_tracking
			WHERE tenant_id = $1 AND period < $2
			ORDER BY period DESC LIMIT 1), 0), now()
		ON CONFLICT (tenant_id, period) DO NOTHING`, tenantID, period)
	if err != nil {
		return nil, mapErr("ensure usage", err)
	}
	u, err := r.Get(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("uso %s %s: %w", tenantID, period.Format("2006-01"), domain.ErrNotFound)
	}
	return u, nil
}

func (r *UsageRepo) IncrementInvoices(ctx context.Context, tenantID string, period time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE usage_tracking
		SET invoices_this_period = invoices_this_period + 1, invoices_total = invoices_total + 1, updated_at = now()
		WHERE tenant_id = $1 AND period = $2`, tenantID, period)
	if err != nil {
		return mapErr("increment usage", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("uso %s %s: %w", tenantID, period.Format("2006-01"), domain.ErrNotFound)
	}
	return nil
}
