package entity

import "time"

// Tipos de tercero.
const (
	PartyCustomer = "customer"
	PartyPartner  = "partner"
	PartySupplier = "supplier"
)

// ValidPartyKind indica si k es un tipo de tercero conocido.
func ValidPartyKind(k string) bool {
	return k == PartyCustomer || k == PartyPartner || k == PartySupplier
}

// Party representa un cliente, partenaire o proveedor del tenant.
type Party struct {
	ID        int64
	TenantID  string
	Kind      string // customer, partner, supplier
	Name      string
	Email     string
	Phone     string
	TaxID     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
