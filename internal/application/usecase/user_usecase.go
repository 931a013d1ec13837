package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/auth"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// TempPasswordLength longitud de la contraseña temporal generada.
const TempPasswordLength = 12

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	store repository.Store
	guard *subscription.Guard
	cache ports.CacheInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(store repository.Store, guard *subscription.Guard, cache ports.CacheInvalidator, log zerolog.Logger, now func() time.Time) *UserUseCase {
	if now == nil {
		now = time.Now
	}
	return &UserUseCase{store: store, guard: guard, cache: cache, log: log, now: now}
}

func tempPassword() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := 0; i < TempPasswordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("contraseña temporal: %w", err)
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Create alta de usuario en el tenant del llamante con contraseña temporal.
// Solo un superadmin crea otro superadmin; el usuario queda ligado al tenant para siempre.
func (uc *UserUseCase) Create(ctx context.Context, sc entity.SecurityContext, requested string, in dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !sc.IsAdmin() {
		return nil, domain.Errorf(domain.ErrForbidden, "solo un administrador crea usuarios")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if role == entity.RoleSuperadmin && sc.Role != entity.RoleSuperadmin {
		return nil, domain.Errorf(domain.ErrForbidden, "solo un superadmin crea superadmins")
	}
	if in.SendEmail && in.Email == "" {
		return nil, domain.NewValidation(map[string]string{"email": "requerido para enviar las credenciales"})
	}
	tenantID, err := owner(sc, requested)
	if err != nil {
		return nil, err
	}
	password, err := tempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	var out dto.CreateUserResponse
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if t, err := uow.Tenants().GetByID(ctx, tenantID); err != nil {
			return fmt.Errorf("usuario: %w", err)
		} else if t == nil {
			return domain.NewValidation(map[string]string{"entreprise": "no existe"})
		}
		if in.WarehouseID != nil {
			w, err := uow.Warehouses().GetByID(ctx, *in.WarehouseID)
			if err != nil {
				return fmt.Errorf("usuario: %w", err)
			}
			if w == nil || w.TenantID != tenantID {
				return domain.NewValidation(map[string]string{"boutique": "no pertenece a la entreprise"})
			}
		}
		if err := uc.guard.Admit(ctx, uow, tenantID, quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceUsers}); err != nil {
			return err
		}
		now := uc.now()
		u := &entity.User{
			Username: strings.TrimSpace(in.Username), Email: strings.ToLower(strings.TrimSpace(in.Email)),
			PasswordHash: hash, FirstName: in.FirstName, LastName: in.LastName, Role: role,
			TenantID: tenantID, WarehouseID: in.WarehouseID, Active: true, CreatedAt: now, UpdatedAt: now,
		}
		if err := uow.Users().Create(ctx, u); err != nil {
			return fmt.Errorf("usuario: %w", err)
		}
		if in.SendEmail {
			bosses, err := uow.Users().ListByRole(ctx, tenantID, entity.RoleSuperadmin)
			if err != nil {
				return fmt.Errorf("usuario: %w", err)
			}
			var cc []string
			for _, b := range bosses {
				if b.ID != u.ID && b.Email != "" && !strings.EqualFold(b.Email, u.Email) {
					cc = append(cc, b.Email)
				}
			}
			if err := outbox.Enqueue(ctx, uow, outbox.UserCreated(tenantID, u, password, cc)); err != nil {
				return err
			}
		}
		out = dto.CreateUserResponse{User: dto.UserFromEntity(u), TemporaryPassword: password}
		return audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditUserCreate, "usuario "+u.Username+" creado", u.WarehouseID,
			map[string]any{"user": u.ID, "role": role})
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointUsers, ports.EndpointSubscriptions)
	return &out, nil
}

// GetByID detalle de un usuario; NotFound si es de otro tenant.
func (uc *UserUseCase) GetByID(ctx context.Context, sc entity.SecurityContext, id int64) (*dto.UserResponse, error) {
	u, err := uc.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usuario: %w", err)
	}
	if u == nil || (u.TenantID == "" && !sc.IsPlatformAdmin()) || (u.TenantID != "" && !sc.CanSee(u.TenantID)) {
		return nil, domain.ErrNotFound
	}
	out := dto.UserFromEntity(u)
	return &out, nil
}

// UserQuery filtros del listado.
type UserQuery struct {
	Tenant      string
	WarehouseID *int64
	Role        string
	Active      *bool
}

// List usuarios del tenant del llamante.
func (uc *UserUseCase) List(ctx context.Context, sc entity.SecurityContext, q UserQuery, page dto.PageRequest) (*dto.Envelope[dto.UserResponse], error) {
	page = page.Normalize(dto.DefaultPageSize)
	tenantID, empty := dto.ScopeTenant(sc, q.Tenant)
	if empty {
		return dto.NewEnvelope([]dto.UserResponse{}, 0, page), nil
	}
	us, total, err := uc.store.Users().List(ctx, repository.UserFilter{
		TenantID: tenantID, WarehouseID: q.WarehouseID, Role: q.Role, Active: q.Active,
	}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("usuarios: %w", err)
	}
	items := make([]dto.UserResponse, 0, len(us))
	for _, u := range us {
		items = append(items, dto.UserFromEntity(u))
	}
	return dto.NewEnvelope(items, total, page), nil
}

// Me perfil del llamante.
func (uc *UserUseCase) Me(ctx context.Context, sc entity.SecurityContext) (*dto.UserResponse, error) {
	if !sc.Authenticated {
		return nil, domain.ErrUnauthenticated
	}
	u, err := uc.store.Users().GetByID(ctx, sc.UserID)
	if err != nil {
		return nil, fmt.Errorf("usuario: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	out := dto.UserFromEntity(u)
	return &out, nil
}
