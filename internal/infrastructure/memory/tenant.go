package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type tenantRepo struct{ db *db }

func (r tenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.tenants[t.ID]; ok {
			return fmt.Errorf("crear tenant: %w", domain.ErrDuplicate)
		}
		stamp(&t.CreatedAt)
		t.UpdatedAt = t.CreatedAt
		st.tenants[t.ID] = *t
		return nil
	})
}

func (r tenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	var out *entity.Tenant
	r.db.read(func(st *state) {
		if t, ok := st.tenants[id]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r tenantRepo) List(_ context.Context, f repository.TenantFilter, p repository.Page) ([]*entity.Tenant, int64, error) {
	var all []*entity.Tenant
	r.db.read(func(st *state) {
		for _, t := range st.tenants {
			if f.TenantID != "" && t.ID != f.TenantID {
				continue
			}
			if f.Active != nil && t.Active != *f.Active {
				continue
			}
			t := t
			all = append(all, &t)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, p), int64(len(all)), nil
}

func (r tenantRepo) Update(_ context.Context, t *entity.Tenant) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.tenants[t.ID]; !ok {
			return domain.ErrNotFound
		}
		t.UpdatedAt = now()
		st.tenants[t.ID] = *t
		return nil
	})
}

func (r tenantRepo) Delete(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		for _, w := range st.warehouses {
			if w.TenantID == id {
				return fmt.Errorf("el tenant posee boutiques: %w", domain.ErrConflict)
			}
		}
		for _, u := range st.users {
			if u.TenantID == id {
				return fmt.Errorf("el tenant posee usuarios: %w", domain.ErrConflict)
			}
		}
		delete(st.tenants, id)
		return nil
	})
}

func (r tenantRepo) ListActiveIDs(_ context.Context) ([]string, error) {
	var ids []string
	r.db.read(func(st *state) {
		for id, t := range st.tenants {
			if t.Active {
				ids = append(ids, id)
			}
		}
	})
	sort.Strings(ids)
	return ids, nil
}

type warehouseRepo struct{ db *db }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.db.write(func(st *state) error {
		w.ID = st.nextID("warehouses")
		stamp(&w.CreatedAt)
		w.UpdatedAt = w.CreatedAt
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r warehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.db.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r warehouseRepo) List(_ context.Context, f repository.WarehouseFilter, p repository.Page) ([]*entity.Warehouse, int64, error) {
	var all []*entity.Warehouse
	r.db.read(func(st *state) {
		for _, w := range st.warehouses {
			if f.TenantID != "" && w.TenantID != f.TenantID {
				continue
			}
			if f.Active != nil && w.Active != *f.Active {
				continue
			}
			w := w
			all = append(all, &w)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, p), int64(len(all)), nil
}

func (r warehouseRepo) CountByTenant(_ context.Context, tenantID string) (int64, error) {
	var n int64
	r.db.read(func(st *state) {
		for _, w := range st.warehouses {
			if w.TenantID == tenantID {
				n++
			}
		}
	})
	return n, nil
}

func (r warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		w.UpdatedAt = now()
		st.warehouses[w.ID] = *w
		return nil
	})
}

type userRepo struct{ db *db }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	return r.db.write(func(st *state) error {
		for _, o := range st.users {
			if strings.EqualFold(o.Username, u.Username) {
				return fmt.Errorf("username: %w", domain.ErrDuplicate)
			}
			if u.Email != "" && strings.EqualFold(o.Email, u.Email) {
				return fmt.Errorf("email: %w", domain.ErrDuplicate)
			}
		}
		u.ID = st.nextID("users")
		stamp(&u.CreatedAt)
		u.UpdatedAt = u.CreatedAt
		st.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	r.db.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r userRepo) find(match func(entity.User) bool) *entity.User {
	var out *entity.User
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if match(u) {
				u := u
				out = &u
				return
			}
		}
	})
	return out
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return email != "" && strings.EqualFold(u.Email, email) }), nil
}

func (r userRepo) List(_ context.Context, f repository.UserFilter, p repository.Page) ([]*entity.User, int64, error) {
	var all []*entity.User
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if f.TenantID != "" && u.TenantID != f.TenantID {
				continue
			}
			if f.WarehouseID != nil && (u.WarehouseID == nil || *u.WarehouseID != *f.WarehouseID) {
				continue
			}
			if f.Role != "" && u.Role != f.Role {
				continue
			}
			if f.Active != nil && u.Active != *f.Active {
				continue
			}
			u := u
			all = append(all, &u)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, p), int64(len(all)), nil
}

func (r userRepo) CountByTenant(_ context.Context, tenantID string) (int64, error) {
	var n int64
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if u.TenantID == tenantID {
				n++
			}
		}
	})
	return n, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	return r.db.write(func(st *state) error {
		prev, ok := st.users[u.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if prev.TenantID != u.TenantID {
			return domain.NewInvariant("el tenant de un usuario es inmutable")
		}
		u.UpdatedAt = now()
		st.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) ListByRole(_ context.Context, tenantID, role string) ([]*entity.User, error) {
	var out []*entity.User
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if u.TenantID == tenantID && u.Role == role && u.Active {
				u := u
				out = append(out, &u)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) ListWarehouseAdmins(_ context.Context, warehouseID int64) ([]*entity.User, error) {
	var out []*entity.User
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if u.WarehouseID != nil && *u.WarehouseID == warehouseID && u.Role == entity.RoleAdmin && u.Active {
				u := u
				out = append(out, &u)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
