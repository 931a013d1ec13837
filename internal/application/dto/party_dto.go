package dto

import (
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// CreatePartyRequest alta de cliente, partenaire o proveedor.
type CreatePartyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	TaxID   string `json:"tax_id" validate:"omitempty,max=50"`
	Address string `json:"address" validate:"omitempty,max=300"`
}

// PartyResponse salida de un tercero.
type PartyResponse struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"entreprise"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	TaxID     string    `json:"tax_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func PartyFromEntity(p *entity.Party) PartyResponse {
	return PartyResponse{
		ID: p.ID, TenantID: p.TenantID, Kind: p.Kind, Name: p.Name, Email: p.Email,
		Phone: p.Phone, TaxID: p.TaxID, Address: p.Address, CreatedAt: p.CreatedAt,
	}
}

// CreateCategoryRequest alta de categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"entreprise"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func CategoryFromEntity(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, TenantID: c.TenantID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}
