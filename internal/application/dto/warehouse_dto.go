package dto

import (
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// CreateWarehouseRequest entrada para crear una boutique.
type CreateWarehouseRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"omitempty,max=300"`
	City    string `json:"city" validate:"omitempty,max=100"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	// Entreprise solo la usa el operador de plataforma.
	Entreprise string `json:"entreprise"`
}

// WarehouseResponse salida de una boutique.
type WarehouseResponse struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"entreprise"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func WarehouseFromEntity(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID: w.ID, TenantID: w.TenantID, Name: w.Name, Address: w.Address, City: w.City,
		Phone: w.Phone, Active: w.Active, CreatedAt: w.CreatedAt,
	}
}
