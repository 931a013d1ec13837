package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/auth"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// TenantIDLength longitud del código opaco de entreprise.
const TenantIDLength = 10

// MaxUploadSize tamaño máximo de una imagen subida.
const MaxUploadSize = 5 << 20

// TenantUseCase alta, consulta y mantenimiento de entreprises.
type TenantUseCase struct {
	store        repository.Store
	manager      *subscription.Manager
	verification *VerificationUseCase
	storage      ports.BlobStorage
	cache        ports.CacheInvalidator
	log          zerolog.Logger
	now          func() time.Time
}

// NewTenantUseCase construye el caso de uso. storage nil deshabilita la subida de logos.
func NewTenantUseCase(store repository.Store, manager *subscription.Manager, verification *VerificationUseCase,
	storage ports.BlobStorage, cache ports.CacheInvalidator, log zerolog.Logger, now func() time.Time) *TenantUseCase {
	if now == nil {
		now = time.Now
	}
	return &TenantUseCase{store: store, manager: manager, verification: verification, storage: storage, cache: cache, log: log, now: now}
}

func newTenantID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:TenantIDLength]
}

// Signup crea entreprise, boutique principal, superadmin y suscripción Free en prueba, todo o nada.
func (uc *TenantUseCase) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	var out dto.SignupResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		t := &entity.Tenant{
			Name: strings.TrimSpace(req.Name), Email: strings.ToLower(req.Email), Phone: req.Phone,
			Address: req.Address, City: req.City, Country: req.Country, Active: true, CreatedAt: now, UpdatedAt: now,
		}
		for i := 0; ; i++ {
			t.ID = newTenantID()
			existing, err := uow.Tenants().GetByID(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("alta: %w", err)
			}
			if existing == nil {
				break
			}
			if i == 4 {
				return fmt.Errorf("alta: no se pudo generar un código libre")
			}
		}
		if err := uow.Tenants().Create(ctx, t); err != nil {
			return fmt.Errorf("alta: entreprise: %w", err)
		}
		name := strings.TrimSpace(req.WarehouseName)
		if name == "" {
			name = t.Name
		}
		w := &entity.Warehouse{
			TenantID: t.ID, Name: name, Address: req.Address, City: req.City, Phone: req.Phone,
			Active: true, CreatedAt: now, UpdatedAt: now,
		}
		if err := uow.Warehouses().Create(ctx, w); err != nil {
			return fmt.Errorf("alta: boutique: %w", err)
		}
		u := &entity.User{
			Username: strings.TrimSpace(req.Username), Email: t.Email, PasswordHash: hash,
			FirstName: req.FirstName, LastName: req.LastName, Role: entity.RoleSuperadmin,
			TenantID: t.ID, WarehouseID: &w.ID, Active: true, CreatedAt: now, UpdatedAt: now,
		}
		if err := uow.Users().Create(ctx, u); err != nil {
			return fmt.Errorf("alta: usuario: %w", err)
		}
		sub, err := uc.manager.EnsureInTx(ctx, uow, t.ID)
		if err != nil {
			return err
		}
		if uc.verification != nil {
			if err := uc.verification.IssueInTx(ctx, uow, u); err != nil {
				return err
			}
		}
		sc := entity.ContextFromUser(u)
		if err := audit.Record(ctx, uow, sc, entity.AuditTenantCreate, "alta de la entreprise "+t.Name, &w.ID,
			map[string]any{"tenant": t.ID, "warehouse": w.ID, "user": u.ID}); err != nil {
			return err
		}
		out = dto.SignupResponse{
			Tenant: dto.TenantFromEntity(t), Warehouse: dto.WarehouseFromEntity(w),
			User: dto.UserFromEntity(u), Subscription: uc.manager.Response(sub),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant", out.Tenant.ID).Str("user", out.User.Username).Msg("entreprise creada")
	return &out, nil
}

// List entreprises visibles: todas para el operador de plataforma, la propia para el resto.
func (uc *TenantUseCase) List(ctx context.Context, sc entity.SecurityContext, active *bool, page dto.PageRequest) (*dto.Envelope[dto.TenantResponse], error) {
	page = page.Normalize(dto.DefaultPageSize)
	tenantID, empty := dto.ScopeTenant(sc, "")
	if empty {
		return dto.NewEnvelope([]dto.TenantResponse{}, 0, page), nil
	}
	ts, total, err := uc.store.Tenants().List(ctx, repository.TenantFilter{TenantID: tenantID, Active: active}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("entreprises: %w", err)
	}
	items := make([]dto.TenantResponse, 0, len(ts))
	for _, t := range ts {
		items = append(items, dto.TenantFromEntity(t))
	}
	return dto.NewEnvelope(items, total, page), nil
}

func (uc *TenantUseCase) visible(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, id string) (*entity.Tenant, error) {
	t, err := uow.Tenants().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("entreprise: %w", err)
	}
	if t == nil || !sc.CanSee(t.ID) {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Get detalle de una entreprise.
func (uc *TenantUseCase) Get(ctx context.Context, sc entity.SecurityContext, id string) (*dto.TenantResponse, error) {
	t, err := uc.visible(ctx, uc.store, sc, id)
	if err != nil {
		return nil, err
	}
	out := dto.TenantFromEntity(t)
	return &out, nil
}

func canManageTenant(sc entity.SecurityContext) bool {
	return sc.Role == entity.RoleSuperadmin
}

// Update PATCH parcial. Los strings vacíos se ignoran.
func (uc *TenantUseCase) Update(ctx context.Context, sc entity.SecurityContext, id string, req dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var out dto.TenantResponse
	err := uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		t, err := uc.visible(ctx, uow, sc, id)
		if err != nil {
			return err
		}
		if !canManageTenant(sc) {
			return domain.Errorf(domain.ErrForbidden, "solo el superadmin modifica la entreprise")
		}
		changed := map[string]any{}
		set := func(field string, dst *string, v *string) {
			if s, ok := present(v); ok && s != *dst {
				*dst = s
				changed[field] = s
			}
		}
		set("name", &t.Name, req.Name)
		set("email", &t.Email, req.Email)
		set("phone", &t.Phone, req.Phone)
		set("address", &t.Address, req.Address)
		set("city", &t.City, req.City)
		set("country", &t.Country, req.Country)
		set("tax_id", &t.TaxID, req.TaxID)
		if req.Active != nil && *req.Active != t.Active {
			if !sc.IsPlatformAdmin() {
				return domain.Errorf(domain.ErrForbidden, "solo el operador de plataforma activa o desactiva entreprises")
			}
			t.Active = *req.Active
			changed["active"] = t.Active
		}
		out = dto.TenantFromEntity(t)
		if len(changed) == 0 {
			return nil
		}
		t.UpdatedAt = uc.now()
		if err := uow.Tenants().Update(ctx, t); err != nil {
			return fmt.Errorf("entreprise: %w", err)
		}
		out = dto.TenantFromEntity(t)
		return audit.RecordFor(ctx, uow, sc, t.ID, entity.AuditTenantUpdate, "entreprise modificada", nil, changed)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, id, ports.EndpointTenants)
	return &out, nil
}

// Delete solo el operador de plataforma, y solo si la entreprise ya no posee datos.
func (uc *TenantUseCase) Delete(ctx context.Context, sc entity.SecurityContext, id string) error {
	if !sc.IsPlatformAdmin() {
		return domain.Errorf(domain.ErrForbidden, "solo el operador de plataforma elimina entreprises")
	}
	err := uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := uc.visible(ctx, uow, sc, id); err != nil {
			return err
		}
		if n, err := uow.Products().CountByTenant(ctx, id); err != nil {
			return fmt.Errorf("entreprise: %w", err)
		} else if n > 0 {
			return domain.Errorf(domain.ErrConflict, "la entreprise posee %d productos", n)
		}
		if err := uow.Tenants().Delete(ctx, id); err != nil {
			return err
		}
		return audit.RecordFor(ctx, uow, sc, id, entity.AuditTenantDelete, "entreprise eliminada", nil, nil)
	})
	if err != nil {
		return err
	}
	invalidate(ctx, uc.cache, uc.log, id, ports.AllEndpoints...)
	return nil
}

// Upload archivo recibido del cliente.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (u Upload) validate() error {
	if u.Size <= 0 || u.Size > MaxUploadSize {
		return domain.NewValidation(map[string]string{"file": fmt.Sprintf("tamaño entre 1 byte y %d MB", MaxUploadSize>>20)})
	}
	if !strings.HasPrefix(u.ContentType, "image/") {
		return domain.NewValidation(map[string]string{"file": "se espera una imagen"})
	}
	return nil
}

// blobKey tenants/<tenant>/<kind>/<uuid><ext>.
func blobKey(tenantID, kind, filename string) string {
	return fmt.Sprintf("tenants/%s/%s/%s%s", tenantID, kind, uuid.NewString(), strings.ToLower(path.Ext(filename)))
}

// UploadLogo guarda el logo y registra la clave opaca en la entreprise.
func (uc *TenantUseCase) UploadLogo(ctx context.Context, sc entity.SecurityContext, id string, up Upload) (*dto.TenantResponse, error) {
	if uc.storage == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "almacenamiento de archivos no configurado")
	}
	if err := up.validate(); err != nil {
		return nil, err
	}
	t, err := uc.visible(ctx, uc.store, sc, id)
	if err != nil {
		return nil, err
	}
	if !canManageTenant(sc) {
		return nil, domain.ErrForbidden
	}
	key := blobKey(t.ID, "logo", up.Filename)
	if err := uc.storage.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, fmt.Errorf("logo: %w", err)
	}
	var out dto.TenantResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		t, err := uow.Tenants().GetByID(ctx, id)
		if err != nil || t == nil {
			return fmt.Errorf("logo: %w", domain.ErrNotFound)
		}
		t.LogoPath = key
		t.UpdatedAt = uc.now()
		if err := uow.Tenants().Update(ctx, t); err != nil {
			return err
		}
		out = dto.TenantFromEntity(t)
		return audit.RecordFor(ctx, uow, sc, t.ID, entity.AuditTenantUpdate, "logo actualizado", nil, map[string]any{"logo": key})
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, id, ports.EndpointTenants)
	return &out, nil
}
