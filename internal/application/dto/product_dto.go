package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU            string           `json:"sku" validate:"required,min=1,max=100"`
	Barcode        *string          `json:"barcode" validate:"omitempty,max=100"`
	Name           string           `json:"name" validate:"required,min=1,max=200"`
	Description    string           `json:"description"`
	CategoryID     *int64           `json:"category"`
	SupplierID     *int64           `json:"supplier"`
	PurchasePrice  decimal.Decimal  `json:"purchase_price"`
	SalePrice      decimal.Decimal  `json:"sale_price"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	Currency       string           `json:"currency" validate:"omitempty,len=3"`
	UnitOfMeasure  string           `json:"unit_of_measure" validate:"omitempty,max=30"`
	MinStock       int64            `json:"min_stock" validate:"gte=0"`
	MaxStock       int64            `json:"max_stock" validate:"gte=0"`
	ReorderPoint   *int64           `json:"reorder_point" validate:"omitempty,gte=0"`
	State          string           `json:"state" validate:"omitempty,oneof=new used refurb defective"`
	// Entreprise se ignora salvo para el operador de plataforma: el tenant se fuerza al del llamante.
	Entreprise string `json:"entreprise"`
}

// UpdateProductRequest PATCH parcial; strings vacíos cuentan como ausentes.
type UpdateProductRequest struct {
	Barcode        *string          `json:"barcode" validate:"omitempty,max=100"`
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	CategoryID     *int64           `json:"category"`
	SupplierID     *int64           `json:"supplier"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	Currency       *string          `json:"currency" validate:"omitempty,len=3"`
	UnitOfMeasure  *string          `json:"unit_of_measure"`
	MinStock       *int64           `json:"min_stock" validate:"omitempty,gte=0"`
	MaxStock       *int64           `json:"max_stock" validate:"omitempty,gte=0"`
	ReorderPoint   *int64           `json:"reorder_point" validate:"omitempty,gte=0"`
	State          *string          `json:"state" validate:"omitempty,oneof=new used refurb defective"`
	Active         *bool            `json:"active"`
	Entreprise     *string          `json:"entreprise"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             int64            `json:"id"`
	TenantID       string           `json:"entreprise"`
	SKU            string           `json:"sku"`
	Barcode        *string          `json:"barcode"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	CategoryID     *int64           `json:"category"`
	CategoryName   string           `json:"category_name,omitempty"`
	SupplierID     *int64           `json:"supplier"`
	SupplierName   string           `json:"supplier_name,omitempty"`
	PurchasePrice  decimal.Decimal  `json:"purchase_price"`
	SalePrice      decimal.Decimal  `json:"sale_price"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	Currency       string           `json:"currency"`
	UnitOfMeasure  string           `json:"unit_of_measure"`
	MinStock       int64            `json:"min_stock"`
	MaxStock       int64            `json:"max_stock"`
	ReorderPoint   *int64           `json:"reorder_point"`
	NeedsReorder   bool             `json:"needs_reorder"`
	State          string           `json:"state"`
	Active         bool             `json:"active"`
	TotalQuantity  int64            `json:"total_quantity"`
	Image          string           `json:"image,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID: p.ID, TenantID: p.TenantID, SKU: p.SKU, Barcode: p.Barcode, Name: p.Name,
		Description: p.Description, CategoryID: p.CategoryID, SupplierID: p.SupplierID,
		PurchasePrice: p.PurchasePrice, SalePrice: p.SalePrice, WholesalePrice: p.WholesalePrice,
		Currency: p.Currency, UnitOfMeasure: p.UnitOfMeasure, MinStock: p.MinStock, MaxStock: p.MaxStock,
		ReorderPoint: p.ReorderPoint, NeedsReorder: p.NeedsReorder(), State: p.State, Active: p.Active,
		TotalQuantity: p.TotalQuantity, Image: p.ImagePath, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func ProductFromView(v *repository.ProductView) ProductResponse {
	out := ProductFromEntity(&v.Product)
	out.CategoryName = v.CategoryName
	out.SupplierName = v.SupplierName
	return out
}

// ImportResult resumen de una importación CSV.
type ImportResult struct {
	Created int               `json:"created"`
	Skipped int               `json:"skipped"`
	Errors  map[string]string `json:"errors,omitempty"`
}
