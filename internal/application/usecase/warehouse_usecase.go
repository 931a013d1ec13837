package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso de boutiques.
type WarehouseUseCase struct {
	store repository.Store
	guard *subscription.Guard
	cache ports.CacheInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(store repository.Store, guard *subscription.Guard, cache ports.CacheInvalidator, log zerolog.Logger, now func() time.Time) *WarehouseUseCase {
	if now == nil {
		now = time.Now
	}
	return &WarehouseUseCase{store: store, guard: guard, cache: cache, log: log, now: now}
}

// Create crea una boutique si el plan lo admite. Solo admin o superadmin.
func (uc *WarehouseUseCase) Create(ctx context.Context, sc entity.SecurityContext, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !sc.IsAdmin() {
		return nil, domain.Errorf(domain.ErrForbidden, "solo un administrador crea boutiques")
	}
	tenantID, err := owner(sc, in.Entreprise)
	if err != nil {
		return nil, err
	}
	var out dto.WarehouseResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		t, err := uow.Tenants().GetByID(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("boutique: %w", err)
		}
		if t == nil {
			return domain.NewValidation(map[string]string{"entreprise": "no existe"})
		}
		if err := uc.guard.Admit(ctx, uow, tenantID, quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceWarehouses}); err != nil {
			return err
		}
		now := uc.now()
		w := &entity.Warehouse{
			TenantID: tenantID, Name: strings.TrimSpace(in.Name), Address: in.Address, City: in.City,
			Phone: in.Phone, Active: true, CreatedAt: now, UpdatedAt: now,
		}
		if err := uow.Warehouses().Create(ctx, w); err != nil {
			return fmt.Errorf("boutique: %w", err)
		}
		out = dto.WarehouseFromEntity(w)
		return audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditWarehouseCreate, "boutique "+w.Name+" creada", &w.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointWarehouses, ports.EndpointSubscriptions)
	return &out, nil
}

// GetByID detalle de una boutique; NotFound si es de otro tenant.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, sc entity.SecurityContext, id int64) (*dto.WarehouseResponse, error) {
	w, err := uc.store.Warehouses().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("boutique: %w", err)
	}
	if w == nil || !sc.CanSee(w.TenantID) {
		return nil, domain.ErrNotFound
	}
	out := dto.WarehouseFromEntity(w)
	return &out, nil
}

// List boutiques del tenant del llamante.
func (uc *WarehouseUseCase) List(ctx context.Context, sc entity.SecurityContext, requested string, active *bool, page dto.PageRequest) (*dto.Envelope[dto.WarehouseResponse], error) {
	page = page.Normalize(dto.DefaultPageSize)
	tenantID, empty := dto.ScopeTenant(sc, requested)
	if empty {
		return dto.NewEnvelope([]dto.WarehouseResponse{}, 0, page), nil
	}
	ws, total, err := uc.store.Warehouses().List(ctx, repository.WarehouseFilter{TenantID: tenantID, Active: active}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("boutiques: %w", err)
	}
	items := make([]dto.WarehouseResponse, 0, len(ws))
	for _, w := range ws {
		items = append(items, dto.WarehouseFromEntity(w))
	}
	return dto.NewEnvelope(items, total, page), nil
}
