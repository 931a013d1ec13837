package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// AuditRepository journal append-only: no existe operación de borrado.
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
	List(ctx context.Context, f AuditFilter, p Page) ([]*entity.AuditEntry, int64, error)
}

// OutboxRepository cola de efectos post-commit.
type OutboxRepository interface {
	Enqueue(ctx context.Context, m *entity.OutboxMessage) error
	// ClaimPending toma hasta limit mensajes pendientes sin bloquear a otros workers.
	// Un mensaje en processing cuyo lease (claimed_at + lease) venció antes de now se
	// vuelve a tomar: el worker que lo reclamó cayó antes de marcarlo.
	ClaimPending(ctx context.Context, limit int, now time.Time, lease time.Duration) ([]*entity.OutboxMessage, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string, final bool) error
}

// NotificationLogRepository registro "una vez por mes" de avisos.
type NotificationLogRepository interface {
	// Mark registra (tenant, key, period); devuelve false si ya existía.
	Mark(ctx context.Context, tenantID, key string, period time.Time) (bool, error)
}
