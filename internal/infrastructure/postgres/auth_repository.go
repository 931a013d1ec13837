package postgres

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var (
	_ repository.LegacyTokenRepository       = (*LegacyTokenRepo)(nil)
	_ repository.EmailVerificationRepository = (*VerificationRepo)(nil)
	_ repository.ContactRepository           = (*ContactRepo)(nil)
)

// LegacyTokenRepo tokens opacos de la tabla auth_tokens.
type LegacyTokenRepo struct {
	q Querier
}

func NewLegacyTokenRepository(q Querier) *LegacyTokenRepo {
	return &LegacyTokenRepo{q: q}
}

func (r *LegacyTokenRepo) Create(ctx context.Context, t *entity.LegacyToken) error {
	stamp(&t.CreatedAt)
	_, err := r.q.Exec(ctx, `INSERT INTO auth_tokens (key, user_id, created_at) VALUES ($1, $2, $3)`,
		t.Key, t.UserID, t.CreatedAt)
	return mapErr("insert token", err)
}

func (r *LegacyTokenRepo) Get(ctx context.Context, key string) (*entity.LegacyToken, error) {
	var t entity.LegacyToken
	err := r.q.QueryRow(ctx, `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`, key).
		Scan(&t.Key, &t.UserID, &t.CreatedAt)
	return noRows(&t, "get token", err)
}

// VerificationRepo un código vigente por usuario (el reenvío lo reemplaza).
type VerificationRepo struct {
	q Querier
}

func NewVerificationRepository(q Querier) *VerificationRepo {
	return &VerificationRepo{q: q}
}

func (r *VerificationRepo) Upsert(ctx context.Context, v *entity.EmailVerification) error {
	stamp(&v.CreatedAt)
	_, err := r.q.Exec(ctx, `
		INSERT INTO email_verifications (user_id, code, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, used = EXCLUDED.used, created_at = EXCLUDED.created_at`,
		v.UserID, v.Code, v.ExpiresAt, v.Used, v.CreatedAt)
	return mapErr("upsert verification", err)
}

func (r *VerificationRepo) Get(ctx context.Context, userID int64) (*entity.EmailVerification, error) {
	var v entity.EmailVerification
	err := r.q.QueryRow(ctx, `
		SELECT user_id, code, expires_at, used, created_at FROM email_verifications WHERE user_id = $1`, userID).
		Scan(&v.UserID, &v.Code, &v.ExpiresAt, &v.Used, &v.CreatedAt)
	return noRows(&v, "get verification", err)
}

func (r *VerificationRepo) MarkUsed(ctx context.Context, userID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE email_verifications SET used = TRUE WHERE user_id = $1`, userID)
	if err != nil {
		return mapErr("mark verification used", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ContactRepo mensajes del formulario público.
type ContactRepo struct {
	q Querier
}

func NewContactRepository(q Querier) *ContactRepo {
	return &ContactRepo{q: q}
}

func (r *ContactRepo) Create(ctx context.Context, m *entity.ContactMessage) error {
	stamp(&m.CreatedAt)
	err := r.q.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt).Scan(&m.ID)
	return mapErr("insert contact", err)
}
