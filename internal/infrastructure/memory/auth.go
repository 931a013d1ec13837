package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

type legacyTokenRepo struct{ db *db }

func (r legacyTokenRepo) Create(_ context.Context, t *entity.LegacyToken) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.tokens[t.Key]; ok {
			return fmt.Errorf("token: %w", domain.ErrDuplicate)
		}
		stamp(&t.CreatedAt)
		st.tokens[t.Key] = *t
		return nil
	})
}

func (r legacyTokenRepo) Get(_ context.Context, key string) (*entity.LegacyToken, error) {
	var out *entity.LegacyToken
	r.db.read(func(st *state) {
		if t, ok := st.tokens[key]; ok {
			out = &t
		}
	})
	return out, nil
}

type verificationRepo struct{ db *db }

func (r verificationRepo) Upsert(_ context.Context, v *entity.EmailVerification) error {
	return r.db.write(func(st *state) error {
		stamp(&v.CreatedAt)
		st.verifications[v.UserID] = *v
		return nil
	})
}

func (r verificationRepo) Get(_ context.Context, userID int64) (*entity.EmailVerification, error) {
	var out *entity.EmailVerification
	r.db.read(func(st *state) {
		if v, ok := st.verifications[userID]; ok {
			out = &v
		}
	})
	return out, nil
}

func (r verificationRepo) MarkUsed(_ context.Context, userID int64) error {
	return r.db.write(func(st *state) error {
		v, ok := st.verifications[userID]
		if !ok {
			return domain.ErrNotFound
		}
		v.Used = true
		st.verifications[userID] = v
		return nil
	})
}

type contactRepo struct{ db *db }

func (r contactRepo) Create(_ context.Context, m *entity.ContactMessage) error {
	return r.db.write(func(st *state) error {
		m.ID = st.nextID("contacts")
		stamp(&m.CreatedAt)
		st.contacts = append(st.contacts, *m)
		return nil
	})
}
