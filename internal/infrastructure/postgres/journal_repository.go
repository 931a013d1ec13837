package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var (
	_ repository.AuditRepository           = (*AuditRepo)(nil)
	_ repository.OutboxRepository          = (*OutboxRepo)(nil)
	_ repository.NotificationLogRepository = (*NotificationLogRepo)(nil)
)

// AuditRepo journal append-only. La tabla no recibe UPDATE ni DELETE desde la aplicación.
type AuditRepo struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

const auditColumns = `id, at, actor_user_id, tenant_id, warehouse_id, kind, description, details, ip`

func scanAudit(row pgx.Row) (*entity.AuditEntry, error) {
	var (
		e       entity.AuditEntry
		details []byte
	)
	if err := row.Scan(&e.ID, &e.At, &e.ActorUserID, &e.TenantID, &e.WarehouseID, &e.Kind, &e.Description, &details, &e.IP); err != nil {
		return nil, err
	}
	e.Details = details
	return &e, nil
}

func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	stamp(&e.At)
	var details []byte
	if len(e.Details) > 0 {
		details = e.Details
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO audit_log (at, actor_user_id, tenant_id, warehouse_id, kind, description, details, ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.At, e.ActorUserID, e.TenantID, e.WarehouseID, e.Kind, e.Description, details, e.IP,
	).Scan(&e.ID)
	return mapErr("append audit", err)
}

func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter, p repository.Page) ([]*entity.AuditEntry, int64, error) {
	var w filter
	w.eq("tenant_id", f.TenantID)
	w.eqInt("warehouse_id", f.WarehouseID)
	w.eq("kind", f.Kind)
	w.eqInt("actor_user_id", f.ActorUserID)
	w.between("at", f.From, f.To)
	return list(ctx, r.q, auditColumns, "audit_log", "id DESC", w, p, "list audit", scanAudit)
}

// OutboxRepo cola transaccional de mensajes.
type OutboxRepo struct {
	q Querier
}

func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

const outboxColumns = `id::text, tenant_id, kind, recipients, cc, subject, body, payload, status, attempts,
	last_error, created_at, sent_at, claimed_at`

func scanOutbox(row pgx.Row) (*entity.OutboxMessage, error) {
	var (
		m       entity.OutboxMessage
		payload []byte
	)
	err := row.Scan(&m.ID, &m.TenantID, &m.Kind, &m.Recipients, &m.CC, &m.Subject, &m.Body, &payload,
		&m.Status, &m.Attempts, &m.LastError, &m.CreatedAt, &m.SentAt, &m.ClaimedAt)
	if err != nil {
		return nil, err
	}
	m.Payload = payload
	return &m, nil
}

func (r *OutboxRepo) Enqueue(ctx context.Context, m *entity.OutboxMessage) error {
	stamp(&m.CreatedAt)
	if m.Status == "" {
		m.Status = entity.OutboxPending
	}
	if m.CC == nil {
		m.CC = []string{}
	}
	var payload []byte
	if len(m.Payload) > 0 {
		payload = m.Payload
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO outbox_messages (id, tenant_id, kind, recipients, cc, subject, body, payload, status, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.TenantID, m.Kind, m.Recipients, m.CC, m.Subject, m.Body, payload, m.Status, m.CreatedAt)
	return mapErr("enqueue outbox", err)
}

// ClaimPending marca como processing los pendientes más antiguos y los processing con
// lease vencido. SKIP LOCKED reparte los mensajes entre workers concurrentes sin que dos
// tomen el mismo.
func (r *OutboxRepo) ClaimPending(ctx context.Context, limit int, now time.Time, lease time.Duration) ([]*entity.OutboxMessage, error) {
	rows, err := r.q.Query(ctx, `
		UPDATE outbox_messages SET status = 'processing', claimed_at = $2
		WHERE id IN (
			SELECT id FROM outbox_messages
			WHERE status = 'pending'
			   OR (status = 'processing' AND (claimed_at IS NULL OR claimed_at < $3))
			ORDER BY created_at
			LIMIT NULLIF($1::int, 0)
			FOR UPDATE SKIP LOCKED)
		RETURNING `+outboxColumns, limit, now, now.Add(-lease))
	if err != nil {
		return nil, mapErr("claim outbox", err)
	}
	out, err := collect(rows, "claim outbox", scanOutbox)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE outbox_messages SET status = 'sent', sent_at = $2 WHERE id = $1::uuid`, id, at)
	return mapErr("mark outbox sent", err)
}

func (r *OutboxRepo) MarkFailed(ctx context.Context, id, reason string, final bool) error {
	status := entity.OutboxPending
	if final {
		status = entity.OutboxFailed
	}
	_, err := r.q.Exec(ctx, `
		UPDATE outbox_messages SET attempts = attempts + 1, last_error = $2, status = $3
		WHERE id = $1::uuid`, id, reason, status)
	return mapErr("mark outbox failed", err)
}

// NotificationLogRepo deduplicación mensual de avisos por clave primaria compuesta.
type NotificationLogRepo struct {
	q Querier
}

func NewNotificationLogRepository(q Querier) *NotificationLogRepo {
	return &NotificationLogRepo{q: q}
}

func (r *NotificationLogRepo) Mark(ctx context.Context, tenantID, key string, period time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO notification_log (tenant_id, key, period) VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, key, period) DO NOTHING`, tenantID, key, period)
	if err != nil {
		return false, mapErr("mark notification", err)
	}
	return tag.RowsAffected() == 1, nil
}
