package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// DefaultCurrency moneda asignada cuando el alta no la indica.
const DefaultCurrency = "EUR"

// ProductUseCase casos de uso del catálogo de productos.
type ProductUseCase struct {
	store   repository.Store
	guard   *subscription.Guard
	storage ports.BlobStorage
	cache   ports.CacheInvalidator
	log     zerolog.Logger
	now     func() time.Time
}

// NewProductUseCase construye el caso de uso. storage nil deshabilita la subida de imágenes.
func NewProductUseCase(store repository.Store, guard *subscription.Guard, storage ports.BlobStorage,
	cache ports.CacheInvalidator, log zerolog.Logger, now func() time.Time) *ProductUseCase {
	if now == nil {
		now = time.Now
	}
	return &ProductUseCase{store: store, guard: guard, storage: storage, cache: cache, log: log, now: now}
}

// checkRefs valida que categoría y proveedor existan en el mismo tenant.
func checkRefs(ctx context.Context, uow repository.UnitOfWork, tenantID string, categoryID, supplierID *int64) error {
	fields := map[string]string{}
	if categoryID != nil {
		c, err := uow.Categories().GetByID(ctx, *categoryID)
		if err != nil {
			return fmt.Errorf("producto: categoría: %w", err)
		}
		if c == nil || c.TenantID != tenantID {
			fields["category"] = "no existe en la entreprise"
		}
	}
	if supplierID != nil {
		s, err := uow.Parties().GetByID(ctx, *supplierID)
		if err != nil {
			return fmt.Errorf("producto: proveedor: %w", err)
		}
		if s == nil || s.TenantID != tenantID || s.Kind != entity.PartySupplier {
			fields["supplier"] = "no existe en la entreprise"
		}
	}
	if len(fields) > 0 {
		return domain.NewValidation(fields)
	}
	return nil
}

func checkPrices(purchase, sale decimal.Decimal, wholesale *decimal.Decimal) error {
	fields := map[string]string{}
	if purchase.IsNegative() {
		fields["purchase_price"] = "no puede ser negativo"
	}
	if sale.IsNegative() {
		fields["sale_price"] = "no puede ser negativo"
	}
	if wholesale != nil && wholesale.IsNegative() {
		fields["wholesale_price"] = "no puede ser negativo"
	}
	if len(fields) > 0 {
		return domain.NewValidation(fields)
	}
	return nil
}

func cleanBarcode(b *string) *string {
	v, ok := present(b)
	if !ok {
		return nil
	}
	return &v
}

func (uc *ProductUseCase) build(tenantID string, in dto.CreateProductRequest) *entity.Product {
	now := uc.now()
	p := &entity.Product{
		TenantID: tenantID, SKU: strings.TrimSpace(in.SKU), Barcode: cleanBarcode(in.Barcode),
		Name: strings.TrimSpace(in.Name), Description: in.Description, CategoryID: in.CategoryID, SupplierID: in.SupplierID,
		PurchasePrice: in.PurchasePrice, SalePrice: in.SalePrice, WholesalePrice: in.WholesalePrice,
		Currency: strings.ToUpper(in.Currency), UnitOfMeasure: in.UnitOfMeasure, MinStock: in.MinStock,
		MaxStock: in.MaxStock, ReorderPoint: in.ReorderPoint, State: in.State, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.State == "" {
		p.State = entity.ProductStateNew
	}
	if p.UnitOfMeasure == "" {
		p.UnitOfMeasure = "unité"
	}
	return p
}

// createInTx alta dentro de una transacción ya abierta; la usan Create e Import.
func (uc *ProductUseCase) createInTx(ctx context.Context, uow repository.UnitOfWork, tenantID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if err := checkPrices(in.PurchasePrice, in.SalePrice, in.WholesalePrice); err != nil {
		return nil, err
	}
	if in.MaxStock > 0 && in.MinStock > in.MaxStock {
		return nil, domain.NewValidation(map[string]string{"min_stock": "mayor que max_stock"})
	}
	if err := checkRefs(ctx, uow, tenantID, in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}
	if err := uc.guard.Admit(ctx, uow, tenantID, quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceProducts}); err != nil {
		return nil, err
	}
	p := uc.build(tenantID, in)
	if err := uow.Products().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("producto: %w", err)
	}
	return p, nil
}

// Create alta de producto. El tenant se fuerza al del llamante.
func (uc *ProductUseCase) Create(ctx context.Context, sc entity.SecurityContext, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	tenantID, err := owner(sc, in.Entreprise)
	if err != nil {
		return nil, err
	}
	var out dto.ProductResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		p, err := uc.createInTx(ctx, uow, tenantID, in)
		if err != nil {
			return err
		}
		out = dto.ProductFromEntity(p)
		return audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditProductCreate, "producto "+p.SKU+" creado", nil,
			map[string]any{"product": p.ID, "sku": p.SKU})
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointProducts, ports.EndpointSubscriptions)
	return &out, nil
}

func (uc *ProductUseCase) visible(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, id int64) (*entity.Product, error) {
	p, err := uow.Products().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto: %w", err)
	}
	if p == nil || !sc.CanSee(p.TenantID) {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetByID detalle de un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, sc entity.SecurityContext, id int64) (*dto.ProductResponse, error) {
	p, err := uc.visible(ctx, uc.store, sc, id)
	if err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(p)
	return &out, nil
}

// GetByBarcode búsqueda por código de barras (bandera barcode del plan).
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, sc entity.SecurityContext, code string) (*dto.ProductResponse, error) {
	if sc.TenantID != "" {
		if err := uc.guard.Admit(ctx, uc.store, sc.TenantID, quota.Action{Verb: quota.VerbRead, Feature: quota.FeatureBarcode}); err != nil {
			return nil, err
		}
	}
	p, err := uc.store.Products().GetByBarcode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("producto: %w", err)
	}
	if p == nil || !sc.CanSee(p.TenantID) {
		return nil, domain.ErrNotFound
	}
	out := dto.ProductFromEntity(p)
	return &out, nil
}

// Update PATCH parcial. Un cambio de entreprise hacia otro tenant se rechaza.
func (uc *ProductUseCase) Update(ctx context.Context, sc entity.SecurityContext, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var (
		out      dto.ProductResponse
		tenantID string
	)
	err := uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		p, err := uc.visible(ctx, uow, sc, id)
		if err != nil {
			return err
		}
		tenantID = p.TenantID
		if t, ok := present(in.Entreprise); ok && t != p.TenantID {
			return domain.Errorf(domain.ErrCrossTenant, "un producto no puede cambiar de entreprise")
		}
		if err := uc.guard.Admit(ctx, uow, p.TenantID, quota.Action{Verb: quota.VerbUpdate, Resource: quota.ResourceProducts}); err != nil {
			return err
		}
		changed := map[string]any{}
		if in.Barcode != nil {
			p.Barcode = cleanBarcode(in.Barcode)
			changed["barcode"] = p.Barcode
		}
		if v, ok := present(in.Name); ok {
			p.Name = v
			changed["name"] = v
		}
		if in.Description != nil {
			p.Description = *in.Description
			changed["description"] = p.Description
		}
		if in.CategoryID != nil || in.SupplierID != nil {
			if err := checkRefs(ctx, uow, p.TenantID, in.CategoryID, in.SupplierID); err != nil {
				return err
			}
			if in.CategoryID != nil {
				p.CategoryID = in.CategoryID
				changed["category"] = *in.CategoryID
			}
			if in.SupplierID != nil {
				p.SupplierID = in.SupplierID
				changed["supplier"] = *in.SupplierID
			}
		}
		if in.PurchasePrice != nil {
			p.PurchasePrice = *in.PurchasePrice
			changed["purchase_price"] = p.PurchasePrice
		}
		if in.SalePrice != nil {
			p.SalePrice = *in.SalePrice
			changed["sale_price"] = p.SalePrice
		}
		if in.WholesalePrice != nil {
			p.WholesalePrice = in.WholesalePrice
			changed["wholesale_price"] = *in.WholesalePrice
		}
		if err := checkPrices(p.PurchasePrice, p.SalePrice, p.WholesalePrice); err != nil {
			return err
		}
		if v, ok := present(in.Currency); ok {
			p.Currency = strings.ToUpper(v)
			changed["currency"] = p.Currency
		}
		if v, ok := present(in.UnitOfMeasure); ok {
			p.UnitOfMeasure = v
			changed["unit_of_measure"] = v
		}
		if in.MinStock != nil {
			p.MinStock = *in.MinStock
			changed["min_stock"] = p.MinStock
		}
		if in.MaxStock != nil {
			p.MaxStock = *in.MaxStock
			changed["max_stock"] = p.MaxStock
		}
		if p.MaxStock > 0 && p.MinStock > p.MaxStock {
			return domain.NewValidation(map[string]string{"min_stock": "mayor que max_stock"})
		}
		if in.ReorderPoint != nil {
			p.ReorderPoint = in.ReorderPoint
			changed["reorder_point"] = *in.ReorderPoint
		}
		if v, ok := present(in.State); ok {
			p.State = v
			changed["state"] = v
		}
		if in.Active != nil {
			p.Active = *in.Active
			changed["active"] = p.Active
		}
		out = dto.ProductFromEntity(p)
		if len(changed) == 0 {
			return nil
		}
		p.UpdatedAt = uc.now()
		if err := uow.Products().Update(ctx, p); err != nil {
			return fmt.Errorf("producto: %w", err)
		}
		out = dto.ProductFromEntity(p)
		return audit.RecordFor(ctx, uow, sc, p.TenantID, entity.AuditProductUpdate, "producto "+p.SKU+" modificado", nil, changed)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointProducts, ports.EndpointStocks)
	return &out, nil
}

// Delete elimina un producto sin existencias. Solo admin o superadmin.
func (uc *ProductUseCase) Delete(ctx context.Context, sc entity.SecurityContext, id int64) error {
	if !sc.IsAdmin() {
		return domain.Errorf(domain.ErrForbidden, "solo un administrador elimina productos")
	}
	var tenantID string
	err := uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		p, err := uc.visible(ctx, uow, sc, id)
		if err != nil {
			return err
		}
		tenantID = p.TenantID
		if p.TotalQuantity > 0 {
			return domain.Errorf(domain.ErrConflict, "el producto %s aún tiene %d unidades en stock", p.SKU, p.TotalQuantity)
		}
		if err := uow.Products().Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("producto: %w", err)
		}
		return audit.RecordFor(ctx, uow, sc, p.TenantID, entity.AuditProductDelete, "producto "+p.SKU+" eliminado", nil,
			map[string]any{"product": p.ID, "sku": p.SKU})
	})
	if err != nil {
		return err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointProducts, ports.EndpointStocks, ports.EndpointSubscriptions)
	return nil
}

// ProductQuery filtros del listado.
type ProductQuery struct {
	Tenant     string
	CategoryID *int64
	SupplierID *int64
	Active     *bool
	SKU        string
	Barcode    string
}

// List productos del tenant con categoría y proveedor cargados.
func (uc *ProductUseCase) List(ctx context.Context, sc entity.SecurityContext, q ProductQuery, page dto.PageRequest) (*dto.Envelope[dto.ProductResponse], error) {
	page = page.Normalize(dto.ProductsPageSize)
	tenantID, empty := dto.ScopeTenant(sc, q.Tenant)
	if empty {
		return dto.NewEnvelope([]dto.ProductResponse{}, 0, page), nil
	}
	views, total, err := uc.store.Products().List(ctx, repository.ProductFilter{
		TenantID: tenantID, CategoryID: q.CategoryID, SupplierID: q.SupplierID, Active: q.Active,
		SKU: strings.TrimSpace(q.SKU), Barcode: strings.TrimSpace(q.Barcode),
	}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("productos: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.ProductFromView(v))
	}
	return dto.NewEnvelope(items, total, page), nil
}

// UploadImage guarda la imagen del producto y registra la clave opaca.
func (uc *ProductUseCase) UploadImage(ctx context.Context, sc entity.SecurityContext, id int64, up Upload) (*dto.ProductResponse, error) {
	if uc.storage == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "almacenamiento de archivos no configurado")
	}
	if err := up.validate(); err != nil {
		return nil, err
	}
	p, err := uc.visible(ctx, uc.store, sc, id)
	if err != nil {
		return nil, err
	}
	key := blobKey(p.TenantID, "products", up.Filename)
	if err := uc.storage.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, fmt.Errorf("imagen: %w", err)
	}
	var out dto.ProductResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		p, err := uc.visible(ctx, uow, sc, id)
		if err != nil {
			return err
		}
		p.ImagePath = key
		p.UpdatedAt = uc.now()
		if err := uow.Products().Update(ctx, p); err != nil {
			return fmt.Errorf("imagen: %w", err)
		}
		out = dto.ProductFromEntity(p)
		return audit.RecordFor(ctx, uow, sc, p.TenantID, entity.AuditProductUpdate, "imagen de "+p.SKU+" actualizada", nil,
			map[string]any{"image": key})
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, p.TenantID, ports.EndpointProducts)
	return &out, nil
}
