package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type auditRepo struct{ db *db }

func (r auditRepo) Append(_ context.Context, e *entity.AuditEntry) error {
	return r.db.write(func(st *state) error {
		e.ID = st.nextID("audit")
		stamp(&e.At)
		st.audit = append(st.audit, *e)
		return nil
	})
}

func (r auditRepo) List(_ context.Context, f repository.AuditFilter, p repository.Page) ([]*entity.AuditEntry, int64, error) {
	var all []*entity.AuditEntry
	r.db.read(func(st *state) {
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			if f.TenantID != "" && e.TenantID != f.TenantID {
				continue
			}
			if f.WarehouseID != nil && (e.WarehouseID == nil || *e.WarehouseID != *f.WarehouseID) {
				continue
			}
			if f.Kind != "" && e.Kind != f.Kind {
				continue
			}
			if !ptrEq(f.ActorUserID, e.ActorUserID) || !inRange(e.At, f.From, f.To) {
				continue
			}
			all = append(all, &e)
		}
	})
	return paginate(all, p), int64(len(all)), nil
}

type outboxRepo struct{ db *db }

func (r outboxRepo) Enqueue(_ context.Context, m *entity.OutboxMessage) error {
	return r.db.write(func(st *state) error {
		stamp(&m.CreatedAt)
		if m.Status == "" {
			m.Status = entity.OutboxPending
		}
		st.outbox = append(st.outbox, *m)
		return nil
	})
}

func (r outboxRepo) ClaimPending(_ context.Context, limit int, now time.Time, lease time.Duration) ([]*entity.OutboxMessage, error) {
	var out []*entity.OutboxMessage
	expired := now.Add(-lease)
	err := r.db.write(func(st *state) error {
		idx := make([]int, 0)
		for i, m := range st.outbox {
			stale := m.Status == entity.OutboxProcessing && (m.ClaimedAt == nil || m.ClaimedAt.Before(expired))
			if m.Status == entity.OutboxPending || stale {
				idx = append(idx, i)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool { return st.outbox[idx[a]].CreatedAt.Before(st.outbox[idx[b]].CreatedAt) })
		for _, i := range idx {
			if limit > 0 && len(out) >= limit {
				break
			}
			at := now
			st.outbox[i].Status = entity.OutboxProcessing
			st.outbox[i].ClaimedAt = &at
			m := st.outbox[i]
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

func (r outboxRepo) update(id string, fn func(m *entity.OutboxMessage)) error {
	return r.db.write(func(st *state) error {
		for i := range st.outbox {
			if st.outbox[i].ID == id {
				fn(&st.outbox[i])
				return nil
			}
		}
		return nil
	})
}

func (r outboxRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(m *entity.OutboxMessage) {
		m.Status = entity.OutboxSent
		m.SentAt = &at
	})
}

func (r outboxRepo) MarkFailed(_ context.Context, id, reason string, final bool) error {
	return r.update(id, func(m *entity.OutboxMessage) {
		m.Attempts++
		m.LastError = reason
		m.Status = entity.OutboxPending
		if final {
			m.Status = entity.OutboxFailed
		}
	})
}

// Messages copia del outbox (inspección en tests y en modo desarrollo).
func (s *Store) Messages() []entity.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.OutboxMessage, len(s.st.outbox))
	copy(out, s.st.outbox)
	return out
}

type notificationLogRepo struct{ db *db }

func (r notificationLogRepo) Mark(_ context.Context, tenantID, key string, period time.Time) (bool, error) {
	inserted := false
	err := r.db.write(func(st *state) error {
		k := tenantID + "|" + key + "|" + period.Format("2006-01-02")
		if _, ok := st.notifLog[k]; ok {
			return nil
		}
		st.notifLog[k] = struct{}{}
		inserted = true
		return nil
	})
	return inserted, err
}
