package audit

import (
	"context"
	"time"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// UseCase lecturas del journal. No existe borrado.
type UseCase struct {
	store repository.Store
}

func NewUseCase(store repository.Store) *UseCase {
	return &UseCase{store: store}
}

// ListFilter filtros aceptados por GET /audit-logs.
type ListFilter struct {
	Tenant      string
	WarehouseID *int64
	Kind        string
	ActorUserID *int64
	From        *time.Time
	To          *time.Time
}

// List filtra por tenant antes que nada; solo admins del tenant o el operador de plataforma.
func (uc *UseCase) List(ctx context.Context, sc entity.SecurityContext, f ListFilter, page dto.PageRequest) (*dto.Envelope[dto.AuditEntryResponse], error) {
	if !sc.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	tenantID, empty := dto.ScopeTenant(sc, f.Tenant)
	page = page.Normalize(dto.DefaultPageSize)
	if empty {
		return dto.NewEnvelope[dto.AuditEntryResponse](nil, 0, page), nil
	}
	entries, total, err := uc.store.Audit().List(ctx, repository.AuditFilter{
		TenantID:    tenantID,
		WarehouseID: f.WarehouseID,
		Kind:        f.Kind,
		ActorUserID: f.ActorUserID,
		From:        f.From,
		To:          f.To,
	}, page.Repo())
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryFromEntity(e))
	}
	return dto.NewEnvelope(out, total, page), nil
}
