package entity

import (
	"encoding/json"
	"time"
)

// Tipos de entrada del journal.
const (
	AuditStockAdjust        = "stock.adjust"
	AuditStockReserve       = "stock.reserve"
	AuditStockRelease       = "stock.release"
	AuditStockTransfer      = "stock.transfer"
	AuditInventoryCount     = "stock.inventory"
	AuditInvoiceCreate      = "invoice.create"
	AuditInvoiceCancel      = "invoice.cancel"
	AuditPaymentCreate      = "payment.create"
	AuditSubscriptionChange = "subscription.change"
	AuditSubscriptionExt    = "subscription.extend"
	AuditProductCreate      = "product.create"
	AuditProductUpdate      = "product.update"
	AuditProductDelete      = "product.delete"
	AuditProductImport      = "product.import"
	AuditUserCreate         = "user.create"
	AuditWarehouseCreate    = "warehouse.create"
	AuditTenantCreate       = "tenant.create"
	AuditTenantUpdate       = "tenant.update"
	AuditTenantDelete       = "tenant.delete"
	AuditPartyCreate        = "party.create"
)

// AuditEntry entrada append-only. Nunca se borra.
type AuditEntry struct {
	ID          int64
	At          time.Time
	ActorUserID int64
	TenantID    string
	WarehouseID *int64
	Kind        string
	Description string
	Details     json.RawMessage
	IP          string
}
