package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Record añade una entrada al journal dentro de la transacción de la mutación.
// details se serializa a JSON; nil produce un objeto vacío.
func Record(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, kind, description string, warehouseID *int64, details any) error {
	raw := json.RawMessage("{}")
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("audit: serializar detalles: %w", err)
		}
		raw = b
	}
	ip, _ := ctx.Value(ipKey{}).(string)
	e := &entity.AuditEntry{
		ActorUserID: sc.UserID,
		TenantID:    sc.TenantID,
		WarehouseID: warehouseID,
		Kind:        kind,
		Description: description,
		Details:     raw,
		IP:          ip,
	}
	if err := uow.Audit().Append(ctx, e); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

// RecordFor igual que Record pero para un tenant distinto al del contexto (operador de plataforma).
func RecordFor(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, tenantID, kind, description string, warehouseID *int64, details any) error {
	sc.TenantID = tenantID
	return Record(ctx, uow, sc, kind, description, warehouseID, details)
}

type ipKey struct{}

// WithIP adjunta la IP del cliente al contexto para las entradas del journal.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}
