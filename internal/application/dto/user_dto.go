package dto

import (
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// CreateUserRequest alta de usuario con contraseña temporal generada por el servidor.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=150"`
	Email       string `json:"email" validate:"omitempty,email"`
	FirstName   string `json:"first_name" validate:"omitempty,max=150"`
	LastName    string `json:"last_name" validate:"omitempty,max=150"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin superadmin"`
	WarehouseID *int64 `json:"boutique"`
	SendEmail   bool   `json:"send_email"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role"`
	TenantID      string    `json:"entreprise,omitempty"`
	WarehouseID   *int64    `json:"boutique"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateUserResponse incluye la contraseña temporal una única vez.
type CreateUserResponse struct {
	User              UserResponse `json:"user"`
	TemporaryPassword string       `json:"temporary_password"`
}

func UserFromEntity(u *entity.User) UserResponse {
	return UserResponse{
		ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
		Role: u.Role, TenantID: u.TenantID, WarehouseID: u.WarehouseID, Active: u.Active,
		EmailVerified: u.EmailVerified, CreatedAt: u.CreatedAt,
	}
}
