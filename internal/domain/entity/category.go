package entity

import "time"

// Category categoría de productos de un tenant.
type Category struct {
	ID          int64
	TenantID    string
	Name        string
	Description string
	CreatedAt   time.Time
}
