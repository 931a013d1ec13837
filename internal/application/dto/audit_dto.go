package dto

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// AuditEntryResponse salida de una entrada del journal.
type AuditEntryResponse struct {
	ID          int64           `json:"id"`
	At          time.Time       `json:"at"`
	ActorUserID int64           `json:"actor"`
	TenantID    string          `json:"entreprise"`
	WarehouseID *int64          `json:"boutique"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Details     json.RawMessage `json:"details"`
	IP          string          `json:"ip,omitempty"`
}

func AuditEntryFromEntity(e *entity.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID: e.ID, At: e.At, ActorUserID: e.ActorUserID, TenantID: e.TenantID, WarehouseID: e.WarehouseID,
		Kind: e.Kind, Description: e.Description, Details: e.Details, IP: e.IP,
	}
}
