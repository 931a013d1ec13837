package ports

import "context"

// Endpoints cacheados (prefijo de las claves de la caché de respuestas).
const (
	EndpointTenants       = "tenants"
	EndpointWarehouses    = "warehouses"
	EndpointUsers         = "users"
	EndpointProducts      = "products"
	EndpointStocks        = "stocks"
	EndpointMovements     = "movements"
	EndpointInvoices      = "invoices"
	EndpointPayments      = "payments"
	EndpointSubscriptions = "subscriptions"
	EndpointParties       = "parties"
	EndpointCategories    = "categories"
	EndpointAnalytics     = "analytics"
)

// AllEndpoints todos los prefijos; se usa al cambiar de plan.
var AllEndpoints = []string{
	EndpointTenants, EndpointWarehouses, EndpointUsers, EndpointProducts, EndpointStocks,
	EndpointMovements, EndpointInvoices, EndpointPayments, EndpointSubscriptions,
	EndpointParties, EndpointCategories, EndpointAnalytics,
}

// CacheInvalidator borra las entradas de un tenant para los endpoints dados.
// Se invoca solo después del commit.
type CacheInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID string, endpoints ...string) error
}

// NopInvalidator no hace nada (tests sin caché).
type NopInvalidator struct{}

func (NopInvalidator) InvalidateTenant(context.Context, string, ...string) error { return nil }
