package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type stockRepo struct{ db *db }

func (r stockRepo) Get(_ context.Context, productID, warehouseID int64) (*entity.StockRow, error) {
	var out *entity.StockRow
	r.db.read(func(st *state) {
		if row, ok := st.stocks[cellKey{productID, warehouseID}]; ok {
			out = &row
		}
	})
	return out, nil
}

// LockOrCreate: el mutex de la transacción ya serializa, basta con materializar la fila.
func (r stockRepo) LockOrCreate(_ context.Context, productID, warehouseID int64) (*entity.StockRow, error) {
	var out entity.StockRow
	err := r.db.write(func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.warehouses[warehouseID]; !ok {
			return domain.ErrNotFound
		}
		k := cellKey{productID, warehouseID}
		row, ok := st.stocks[k]
		if !ok {
			row = entity.StockRow{ProductID: productID, WarehouseID: warehouseID, UpdatedAt: now()}
			st.stocks[k] = row
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r stockRepo) Save(_ context.Context, row *entity.StockRow) error {
	return r.db.write(func(st *state) error {
		if row.Quantity < 0 || row.Reserved < 0 || row.Reserved > row.Quantity {
			return domain.NewInvariant("fila de stock inconsistente")
		}
		row.UpdatedAt = now()
		st.stocks[cellKey{row.ProductID, row.WarehouseID}] = *row
		return nil
	})
}

func view(st *state, row entity.StockRow) *repository.StockView {
	p := st.products[row.ProductID]
	return &repository.StockView{
		StockRow:      row,
		TenantID:      p.TenantID,
		ProductSKU:    p.SKU,
		ProductName:   p.Name,
		MinStock:      p.MinStock,
		WarehouseName: st.warehouses[row.WarehouseID].Name,
	}
}

func sortViews(v []*repository.StockView) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].WarehouseID != v[j].WarehouseID {
			return v[i].WarehouseID < v[j].WarehouseID
		}
		return v[i].ProductID < v[j].ProductID
	})
}

func (r stockRepo) List(_ context.Context, f repository.StockFilter, p repository.Page) ([]*repository.StockView, int64, error) {
	var all []*repository.StockView
	r.db.read(func(st *state) {
		for _, row := range st.stocks {
			if !ptrEq(f.WarehouseID, row.WarehouseID) || !ptrEq(f.ProductID, row.ProductID) {
				continue
			}
			v := view(st, row)
			if f.TenantID != "" && v.TenantID != f.TenantID {
				continue
			}
			if f.LowOnly && !(v.MinStock > 0 && v.Quantity < v.MinStock) {
				continue
			}
			all = append(all, v)
		}
	})
	sortViews(all)
	return paginate(all, p), int64(len(all)), nil
}

func (r stockRepo) ListAlerts(ctx context.Context, tenantID string) ([]*repository.StockView, error) {
	out, _, err := r.List(ctx, repository.StockFilter{TenantID: tenantID, LowOnly: true}, repository.Page{})
	return out, err
}

func (r stockRepo) ListByWarehouse(_ context.Context, warehouseID int64) ([]*entity.StockRow, error) {
	var out []*entity.StockRow
	r.db.read(func(st *state) {
		for _, row := range st.stocks {
			if row.WarehouseID == warehouseID {
				row := row
				out = append(out, &row)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type movementRepo struct{ db *db }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.db.write(func(st *state) error {
		m.ID = st.nextID("movements")
		stamp(&m.At)
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter, p repository.Page) ([]*entity.StockMovement, int64, error) {
	var all []*entity.StockMovement
	r.db.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.TenantID != "" && m.TenantID != f.TenantID {
				continue
			}
			if !ptrEq(f.WarehouseID, m.WarehouseID) || !ptrEq(f.ProductID, m.ProductID) {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.DocRef != "" && m.DocRef != f.DocRef {
				continue
			}
			if !inRange(m.At, f.From, f.To) {
				continue
			}
			all = append(all, &m)
		}
	})
	return paginate(all, p), int64(len(all)), nil
}

func (r movementRepo) CountDocRefs(_ context.Context, tenantID, prefix string, since time.Time) (int64, error) {
	seen := map[string]struct{}{}
	r.db.read(func(st *state) {
		for _, m := range st.movements {
			if m.TenantID == tenantID && strings.HasPrefix(m.DocRef, prefix) && !m.At.Before(since) {
				seen[m.DocRef] = struct{}{}
			}
		}
	})
	return int64(len(seen)), nil
}
