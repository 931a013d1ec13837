package entity

import "time"

// Tenant representa una entreprise (organización dueña de todos sus datos).
// ID es un código opaco de 10 caracteres.
type Tenant struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	City      string
	Country   string
	TaxID     string
	LogoPath  string // clave opaca en el almacenamiento de archivos
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
