package entity

import "time"

// Warehouse representa una boutique: ubicación de stock, ámbito de numeración de facturas
// y de asignación de usuarios. Pertenece a exactamente un Tenant.
type Warehouse struct {
	ID        int64
	TenantID  string
	Name      string
	Address   string
	City      string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
