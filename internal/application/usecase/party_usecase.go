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
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// PartyUseCase clientes, partenaires, proveedores y categorías del tenant.
type PartyUseCase struct {
	store repository.Store
	cache ports.CacheInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

func NewPartyUseCase(store repository.Store, cache ports.CacheInvalidator, log zerolog.Logger, now func() time.Time) *PartyUseCase {
	if now == nil {
		now = time.Now
	}
	return &PartyUseCase{store: store, cache: cache, log: log, now: now}
}

// Create alta de un tercero del tipo kind.
func (uc *PartyUseCase) Create(ctx context.Context, sc entity.SecurityContext, kind, requested string, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	if !entity.ValidPartyKind(kind) {
		return nil, domain.NewValidation(map[string]string{"kind": "tipo de tercero desconocido"})
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	tenantID, err := owner(sc, requested)
	if err != nil {
		return nil, err
	}
	var out dto.PartyResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		now := uc.now()
		p := &entity.Party{
			TenantID: tenantID, Kind: kind, Name: strings.TrimSpace(in.Name), Email: strings.ToLower(in.Email),
			Phone: in.Phone, TaxID: in.TaxID, Address: in.Address, CreatedAt: now, UpdatedAt: now,
		}
		if err := uow.Parties().Create(ctx, p); err != nil {
			return fmt.Errorf("tercero: %w", err)
		}
		out = dto.PartyFromEntity(p)
		return audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditPartyCreate, kind+" "+p.Name+" creado", nil,
			map[string]any{"party": p.ID, "kind": kind})
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointParties)
	return &out, nil
}

// Get detalle; NotFound si es de otro tenant o de otro tipo.
func (uc *PartyUseCase) Get(ctx context.Context, sc entity.SecurityContext, kind string, id int64) (*dto.PartyResponse, error) {
	p, err := uc.store.Parties().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tercero: %w", err)
	}
	if p == nil || p.Kind != kind || !sc.CanSee(p.TenantID) {
		return nil, domain.ErrNotFound
	}
	out := dto.PartyFromEntity(p)
	return &out, nil
}

// List terceros de un tipo.
func (uc *PartyUseCase) List(ctx context.Context, sc entity.SecurityContext, kind, requested string, page dto.PageRequest) (*dto.Envelope[dto.PartyResponse], error) {
	page = page.Normalize(dto.DefaultPageSize)
	tenantID, empty := dto.ScopeTenant(sc, requested)
	if empty {
		return dto.NewEnvelope([]dto.PartyResponse{}, 0, page), nil
	}
	ps, total, err := uc.store.Parties().List(ctx, repository.PartyFilter{TenantID: tenantID, Kind: kind}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("terceros: %w", err)
	}
	items := make([]dto.PartyResponse, 0, len(ps))
	for _, p := range ps {
		items = append(items, dto.PartyFromEntity(p))
	}
	return dto.NewEnvelope(items, total, page), nil
}

// CreateCategory alta de categoría; el nombre es único por tenant.
func (uc *PartyUseCase) CreateCategory(ctx context.Context, sc entity.SecurityContext, requested string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	tenantID, err := owner(sc, requested)
	if err != nil {
		return nil, err
	}
	var out dto.CategoryResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		c := &entity.Category{TenantID: tenantID, Name: strings.TrimSpace(in.Name), Description: in.Description, CreatedAt: uc.now()}
		if err := uow.Categories().Create(ctx, c); err != nil {
			return fmt.Errorf("categoría: %w", err)
		}
		out = dto.CategoryFromEntity(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointCategories)
	return &out, nil
}

// ListCategories categorías del tenant por nombre.
func (uc *PartyUseCase) ListCategories(ctx context.Context, sc entity.SecurityContext, requested string, page dto.PageRequest) (*dto.Envelope[dto.CategoryResponse], error) {
	page = page.Normalize(dto.DefaultPageSize)
	tenantID, empty := dto.ScopeTenant(sc, requested)
	if empty {
		return dto.NewEnvelope([]dto.CategoryResponse{}, 0, page), nil
	}
	cs, total, err := uc.store.Categories().List(ctx, tenantID, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("categorías: %w", err)
	}
	items := make([]dto.CategoryResponse, 0, len(cs))
	for _, c := range cs {
		items = append(items, dto.CategoryFromEntity(c))
	}
	return dto.NewEnvelope(items, total, page), nil
}
