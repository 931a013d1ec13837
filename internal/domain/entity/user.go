package entity

import "time"

// Roles válidos para User.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin || r == RoleSuperadmin
}

// User representa un usuario. TenantID vacío solo para el operador de plataforma (superadmin sin tenant).
// TenantID es inmutable después de crear el usuario.
type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName     string
	LastName      string
	Role          string // user, admin, superadmin
	TenantID      string
	WarehouseID   *int64
	AvatarPath    string
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPlatformAdmin superadmin sin tenant: visibilidad sobre todos los tenants.
func (u *User) IsPlatformAdmin() bool {
	return u.Role == RoleSuperadmin && u.TenantID == ""
}

// FullName nombre para mostrar.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
