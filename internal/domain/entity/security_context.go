package entity

// SecurityContext contexto inmutable de la petición: quién llama y en qué tenant/boutique.
type SecurityContext struct {
	UserID        int64
	Username      string
	Email         string
	TenantID      string
	WarehouseID   *int64
	Role          string
	Authenticated bool
}

// IsPlatformAdmin superadmin sin tenant.
func (s SecurityContext) IsPlatformAdmin() bool {
	return s.Role == RoleSuperadmin && s.TenantID == ""
}

// IsAdmin admin o superadmin.
func (s SecurityContext) IsAdmin() bool {
	return s.Role == RoleAdmin || s.Role == RoleSuperadmin
}

// CanSee indica si el contexto puede ver datos del tenant dado.
func (s SecurityContext) CanSee(tenantID string) bool {
	return s.IsPlatformAdmin() || (s.TenantID != "" && s.TenantID == tenantID)
}

// ContextFromUser construye el contexto a partir de un usuario autenticado.
func ContextFromUser(u *User) SecurityContext {
	return SecurityContext{
		UserID:        u.ID,
		Username:      u.Username,
		Email:         u.Email,
		TenantID:      u.TenantID,
		WarehouseID:   u.WarehouseID,
		Role:          u.Role,
		Authenticated: true,
	}
}
