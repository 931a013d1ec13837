package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type productRepo struct{ db *db }

func uniqueProduct(st *state, p *entity.Product) error {
	for id, o := range st.products {
		if id == p.ID {
			continue
		}
		if o.SKU == p.SKU {
			return fmt.Errorf("sku %q: %w", p.SKU, domain.ErrDuplicate)
		}
		if p.Barcode != nil && o.Barcode != nil && *o.Barcode == *p.Barcode {
			return fmt.Errorf("barcode %q: %w", *p.Barcode, domain.ErrDuplicate)
		}
	}
	return nil
}

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.db.write(func(st *state) error {
		if err := uniqueProduct(st, p); err != nil {
			return err
		}
		p.ID = st.nextID("products")
		stamp(&p.CreatedAt)
		p.UpdatedAt = p.CreatedAt
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(st *state) {
		for _, p := range st.products {
			if p.SKU == sku {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r productRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(st *state) {
		for _, p := range st.products {
			if p.Barcode != nil && *p.Barcode == barcode {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r productRepo) List(_ context.Context, f repository.ProductFilter, p repository.Page) ([]*repository.ProductView, int64, error) {
	var all []*repository.ProductView
	r.db.read(func(st *state) {
		for _, pr := range st.products {
			if f.TenantID != "" && pr.TenantID != f.TenantID {
				continue
			}
			if f.CategoryID != nil && (pr.CategoryID == nil || *pr.CategoryID != *f.CategoryID) {
				continue
			}
			if f.SupplierID != nil && (pr.SupplierID == nil || *pr.SupplierID != *f.SupplierID) {
				continue
			}
			if f.Active != nil && pr.Active != *f.Active {
				continue
			}
			if f.SKU != "" && pr.SKU != f.SKU {
				continue
			}
			if f.Barcode != "" && (pr.Barcode == nil || *pr.Barcode != f.Barcode) {
				continue
			}
			v := &repository.ProductView{Product: pr}
			if pr.CategoryID != nil {
				v.CategoryName = st.categories[*pr.CategoryID].Name
			}
			if pr.SupplierID != nil {
				v.SupplierName = st.parties[*pr.SupplierID].Name
			}
			all = append(all, v)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, p), int64(len(all)), nil
}

func (r productRepo) CountByTenant(_ context.Context, tenantID string) (int64, error) {
	var n int64
	r.db.read(func(st *state) {
		for _, p := range st.products {
			if p.TenantID == tenantID {
				n++
			}
		}
	})
	return n, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.db.write(func(st *state) error {
		prev, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := uniqueProduct(st, p); err != nil {
			return err
		}
		// total_quantity solo lo escriben AddToTotal y RecomputeTotal
		p.TotalQuantity = prev.TotalQuantity
		p.UpdatedAt = now()
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) Delete(_ context.Context, id int64) error {
	return r.db.write(func(st *state) error {
		for _, l := range st.lines {
			if l.ProductID == id {
				return fmt.Errorf("el producto tiene facturas: %w", domain.ErrConflict)
			}
		}
		for k := range st.stocks {
			if k.product == id {
				delete(st.stocks, k)
			}
		}
		delete(st.products, id)
		return nil
	})
}

func (r productRepo) AddToTotal(_ context.Context, productID, delta int64) (int64, error) {
	var total int64
	err := r.db.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.TotalQuantity += delta
		total = p.TotalQuantity
		st.products[productID] = p
		return nil
	})
	return total, err
}

func (r productRepo) RecomputeTotal(_ context.Context, productID int64) (int64, error) {
	var total int64
	err := r.db.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		total = 0
		for k, row := range st.stocks {
			if k.product == productID {
				total += row.Quantity
			}
		}
		p.TotalQuantity = total
		st.products[productID] = p
		return nil
	})
	return total, err
}

type categoryRepo struct{ db *db }

func (r categoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.db.write(func(st *state) error {
		for _, o := range st.categories {
			if o.TenantID == c.TenantID && o.Name == c.Name {
				return fmt.Errorf("categoría %q: %w", c.Name, domain.ErrDuplicate)
			}
		}
		c.ID = st.nextID("categories")
		stamp(&c.CreatedAt)
		st.categories[c.ID] = *c
		return nil
	})
}

func (r categoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	var out *entity.Category
	r.db.read(func(st *state) {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r categoryRepo) List(_ context.Context, tenantID string, p repository.Page) ([]*entity.Category, int64, error) {
	var all []*entity.Category
	r.db.read(func(st *state) {
		for _, c := range st.categories {
			if tenantID == "" || c.TenantID == tenantID {
				c := c
				all = append(all, &c)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, p), int64(len(all)), nil
}

type partyRepo struct{ db *db }

func (r partyRepo) Create(_ context.Context, p *entity.Party) error {
	return r.db.write(func(st *state) error {
		p.ID = st.nextID("parties")
		stamp(&p.CreatedAt)
		p.UpdatedAt = p.CreatedAt
		st.parties[p.ID] = *p
		return nil
	})
}

func (r partyRepo) GetByID(_ context.Context, id int64) (*entity.Party, error) {
	var out *entity.Party
	r.db.read(func(st *state) {
		if p, ok := st.parties[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r partyRepo) List(_ context.Context, f repository.PartyFilter, p repository.Page) ([]*entity.Party, int64, error) {
	var all []*entity.Party
	r.db.read(func(st *state) {
		for _, pa := range st.parties {
			if f.TenantID != "" && pa.TenantID != f.TenantID {
				continue
			}
			if f.Kind != "" && pa.Kind != f.Kind {
				continue
			}
			pa := pa
			all = append(all, &pa)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, p), int64(len(all)), nil
}
