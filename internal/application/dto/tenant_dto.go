package dto

import (
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// SignupRequest alta de entreprise + boutique principal + superadmin.
type SignupRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
	Address       string `json:"address" validate:"omitempty,max=300"`
	City          string `json:"city" validate:"omitempty,max=100"`
	Country       string `json:"country" validate:"omitempty,max=100"`
	WarehouseName string `json:"boutique_name" validate:"omitempty,max=200"`
	Username      string `json:"username" validate:"required,min=3,max=150"`
	Password      string `json:"password" validate:"required,min=8"`
	FirstName     string `json:"first_name" validate:"omitempty,max=150"`
	LastName      string `json:"last_name" validate:"omitempty,max=150"`
}

// UpdateTenantRequest PATCH parcial; strings vacíos cuentan como ausentes.
type UpdateTenantRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	City    *string `json:"city" validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
	TaxID   *string `json:"tax_id" validate:"omitempty,max=50"`
	Active  *bool   `json:"active"`
}

// TenantResponse salida de una entreprise.
type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	TaxID     string    `json:"tax_id"`
	LogoPath  string    `json:"logo"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupResponse resultado del alta.
type SignupResponse struct {
	Tenant       TenantResponse       `json:"entreprise"`
	Warehouse    WarehouseResponse    `json:"boutique"`
	User         UserResponse         `json:"user"`
	Subscription SubscriptionResponse `json:"subscription"`
}

func TenantFromEntity(t *entity.Tenant) TenantResponse {
	return TenantResponse{
		ID: t.ID, Name: t.Name, Email: t.Email, Phone: t.Phone, Address: t.Address, City: t.City,
		Country: t.Country, TaxID: t.TaxID, LogoPath: t.LogoPath, Active: t.Active, CreatedAt: t.CreatedAt,
	}
}
