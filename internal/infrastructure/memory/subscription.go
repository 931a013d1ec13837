package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

type planRepo struct{ db *db }

func (r planRepo) List(_ context.Context) ([]*entity.Plan, error) {
	var out []*entity.Plan
	r.db.read(func(st *state) {
		for _, p := range st.plans {
			p := p
			out = append(out, &p)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Upsert por nombre interno.
func (r planRepo) Upsert(_ context.Context, p *entity.Plan) error {
	return r.db.write(func(st *state) error {
		for id, o := range st.plans {
			if o.Name == p.Name {
				p.ID = id
				break
			}
		}
		if p.ID == 0 {
			p.ID = st.nextID("plans")
		}
		p.UpdatedAt = now()
		st.plans[p.ID] = *p
		return nil
	})
}

type subscriptionRepo struct{ db *db }

func (r subscriptionRepo) GetByTenant(_ context.Context, tenantID string) (*entity.Subscription, error) {
	var out *entity.Subscription
	r.db.read(func(st *state) {
		if s, ok := st.subscriptions[tenantID]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r subscriptionRepo) GetForUpdate(ctx context.Context, tenantID string) (*entity.Subscription, error) {
	return r.GetByTenant(ctx, tenantID)
}

func (r subscriptionRepo) CreateIfAbsent(_ context.Context, s *entity.Subscription) (bool, error) {
	created := false
	err := r.db.write(func(st *state) error {
		if _, ok := st.subscriptions[s.TenantID]; ok {
			return nil
		}
		if _, ok := st.plans[s.PlanID]; !ok {
			return fmt.Errorf("plan %d: %w", s.PlanID, domain.ErrNotFound)
		}
		s.ID = st.nextID("subscriptions")
		stamp(&s.CreatedAt)
		s.UpdatedAt = s.CreatedAt
		st.subscriptions[s.TenantID] = *s
		created = true
		return nil
	})
	return created, err
}

func (r subscriptionRepo) Update(_ context.Context, s *entity.Subscription) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.subscriptions[s.TenantID]; !ok {
			return domain.ErrNotFound
		}
		s.UpdatedAt = now()
		st.subscriptions[s.TenantID] = *s
		return nil
	})
}

func (r subscriptionRepo) ListAll(_ context.Context) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	r.db.read(func(st *state) {
		for _, s := range st.subscriptions {
			s := s
			out = append(out, &s)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

type usageRepo struct{ db *db }

func (r usageRepo) Get(_ context.Context, tenantID string, period time.Time) (*entity.Usage, error) {
	var out *entity.Usage
	r.db.read(func(st *state) {
		if u, ok := st.usage[usageKey{tenantID, period}]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r usageRepo) Ensure(_ context.Context, tenantID string, period time.Time) (*entity.Usage, error) {
	var out entity.Usage
	err := r.db.write(func(st *state) error {
		k := usageKey{tenantID, period}
		if u, ok := st.usage[k]; ok {
			out = u
			return nil
		}
		// acumulado arrastrado desde el periodo anterior más reciente
		var carry int64
		var latest time.Time
		for uk, u := range st.usage {
			if uk.tenant == tenantID && uk.period.Before(period) && uk.period.After(latest) {
				latest, carry = uk.period, u.InvoicesTotal
			}
		}
		out = entity.Usage{TenantID: tenantID, Period: period, InvoicesTotal: carry, UpdatedAt: now()}
		st.usage[k] = out
		return nil
	})
	return &out, err
}

func (r usageRepo) IncrementInvoices(_ context.Context, tenantID string, period time.Time) error {
	return r.db.write(func(st *state) error {
		k := usageKey{tenantID, period}
		u, ok := st.usage[k]
		if !ok {
			return fmt.Errorf("uso %s %s: %w", tenantID, period.Format("2006-01"), domain.ErrNotFound)
		}
		u.InvoicesThisPeriod++
		u.InvoicesTotal++
		u.UpdatedAt = now()
		st.usage[k] = u
		return nil
	})
}
