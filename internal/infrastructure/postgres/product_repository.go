package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.tenant_id, p.sku, p.barcode, p.name, p.description, p.category_id, p.supplier_id,
	p.purchase_price, p.sale_price, p.wholesale_price, p.currency, p.unit_of_measure, p.min_stock, p.max_stock,
	p.reorder_point, p.state, p.active, p.total_quantity, p.image_path, p.created_at, p.updated_at`

func productDest(p *entity.Product) []any {
	return []any{&p.ID, &p.TenantID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.CategoryID, &p.SupplierID,
		&p.PurchasePrice, &p.SalePrice, &p.WholesalePrice, &p.Currency, &p.UnitOfMeasure, &p.MinStock, &p.MaxStock,
		&p.ReorderPoint, &p.State, &p.Active, &p.TotalQuantity, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(productDest(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

// scanProductView lee el producto más los nombres de categoría y proveedor (LEFT JOIN).
func scanProductView(row pgx.Row) (*repository.ProductView, error) {
	var v repository.ProductView
	dest := append(productDest(&v.Product), &v.CategoryName, &v.SupplierName)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste un nuevo producto. total_quantity inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	p.TotalQuantity = 0
	err := r.q.QueryRow(ctx, `
		INSERT INTO products (tenant_id, sku, barcode, name, description, category_id, supplier_id,
			purchase_price, sale_price, wholesale_price, currency, unit_of_measure, min_stock, max_stock,
			reorder_point, state, active, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`,
		p.TenantID, p.SKU, p.Barcode, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.PurchasePrice, p.SalePrice, p.WholesalePrice, p.Currency, p.UnitOfMeasure, p.MinStock, p.MaxStock,
		p.ReorderPoint, p.State, p.Active, p.ImagePath, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapErr("insert product", err)
}

func (r *ProductRepo) one(ctx context.Context, op, where string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE `+where, arg))
	return noRows(p, op, err)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.one(ctx, "get product", "p.id = $1", id)
}

// GetBySKU busca por SKU (único global).
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.one(ctx, "get product by sku", "p.sku = $1", sku)
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.one(ctx, "get product by barcode", "p.barcode = $1", barcode)
}

// List carga categoría y proveedor en la misma consulta.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter, p repository.Page) ([]*repository.ProductView, int64, error) {
	var w filter
	w.eq("p.tenant_id", f.TenantID)
	w.eqInt("p.category_id", f.CategoryID)
	w.eqInt("p.supplier_id", f.SupplierID)
	w.eqBool("p.active", f.Active)
	w.eq("p.sku", f.SKU)
	w.eq("p.barcode", f.Barcode)
	from := `products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN parties s ON s.id = p.supplier_id`
	sel := productColumns + `, coalesce(c.name, ''), coalesce(s.name, '')`
	return list(ctx, r.q, sel, from, "p.id", w, p, "list products", scanProductView)
}

func (r *ProductRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var w filter
	w.add("tenant_id = ?", tenantID)
	return count(ctx, r.q, "products", &w, "count products")
}

// Update escribe todo salvo tenant_id y total_quantity (derivado, lo mantiene AddToTotal).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	err := r.q.QueryRow(ctx, `
		UPDATE products SET sku = $2, barcode = $3, name = $4, description = $5, category_id = $6,
			supplier_id = $7, purchase_price = $8, sale_price = $9, wholesale_price = $10, currency = $11,
			unit_of_measure = $12, min_stock = $13, max_stock = $14, reorder_point = $15, state = $16,
			active = $17, image_path = $18, updated_at = now()
		WHERE id = $1
		RETURNING total_quantity, updated_at`,
		p.ID, p.SKU, p.Barcode, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.PurchasePrice, p.SalePrice, p.WholesalePrice, p.Currency, p.UnitOfMeasure, p.MinStock, p.MaxStock,
		p.ReorderPoint, p.State, p.Active, p.ImagePath,
	).Scan(&p.TotalQuantity, &p.UpdatedAt)
	if v, err := noRows(p, "update product", err); err != nil {
		return err
	} else if v == nil {
		return domain.ErrNotFound
	}
	return nil
}

// Delete rechaza productos referenciados por facturas; las filas de stock caen en cascada.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	var billed bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoice_lines WHERE product_id = $1)`, id).Scan(&billed); err != nil {
		return mapErr("delete product", err)
	}
	if billed {
		return fmt.Errorf("el producto tiene facturas: %w", domain.ErrConflict)
	}
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return mapErr("delete product", err)
}

// AddToTotal suma delta a total_quantity. El UPDATE toma el bloqueo de la fila y, en READ COMMITTED,
// reevalúa total_quantity sobre la última versión confirmada, así que dos movimientos concurrentes
// del mismo producto nunca pisan la suma del otro.
func (r *ProductRepo) AddToTotal(ctx context.Context, productID, delta int64) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		UPDATE products SET total_quantity = total_quantity + $2
		WHERE id = $1
		RETURNING total_quantity`, productID, delta).Scan(&total)
	if v, err := noRows(&total, "add to total", err); err != nil {
		return 0, err
	} else if v == nil {
		return 0, domain.ErrNotFound
	}
	return total, nil
}

// RecomputeTotal recalcula total_quantity con un único UPDATE agregado.
func (r *ProductRepo) RecomputeTotal(ctx context.Context, productID int64) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		UPDATE products p
		SET total_quantity = coalesce((SELECT sum(quantity) FROM stock_rows s WHERE s.product_id = p.id), 0)
		WHERE p.id = $1
		RETURNING total_quantity`, productID).Scan(&total)
	if v, err := noRows(&total, "recompute total", err); err != nil {
		return 0, err
	} else if v == nil {
		return 0, domain.ErrNotFound
	}
	return total, nil
}
