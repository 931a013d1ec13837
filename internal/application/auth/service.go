// Package auth resuelve credenciales (JWT bearer o token opaco heredado) en un SecurityContext.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/pkg/jwt"
)

// LegacyTokenLength longitud en hex de los tokens opacos.
const LegacyTokenLength = 40

var errBadCredentials = domain.Errorf(domain.ErrUnauthenticated, "credenciales inválidas")

// Service login, refresh y resolución de credenciales.
type Service struct {
	store  repository.Store
	tokens *jwt.Issuer
	log    zerolog.Logger
	now    func() time.Time
	dummy  []byte
}

// NewService construye el servicio. El hash ficticio iguala el coste de un usuario inexistente.
func NewService(store repository.Store, tokens *jwt.Issuer, log zerolog.Logger) (*Service, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return &Service{store: store, tokens: tokens, log: log, now: time.Now, dummy: dummy}, nil
}

// HashPassword hash bcrypt de una contraseña.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return string(h), nil
}

// Login acepta username o email. Usuario desconocido y contraseña errónea devuelven el mismo error.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	u, err := s.authenticate(ctx, req.Identifier(), req.Password)
	if err != nil {
		return nil, err
	}
	sub := subjectOf(u)
	access, err := s.tokens.Access(sub)
	if err != nil {
		return nil, fmt.Errorf("auth: access: %w", err)
	}
	refresh, err := s.tokens.Refresh(sub)
	if err != nil {
		return nil, fmt.Errorf("auth: refresh: %w", err)
	}
	out := &dto.LoginResponse{Access: access, Refresh: refresh, User: dto.UserFromEntity(u), Permissions: Permissions(u.Role)}
	if u.TenantID != "" {
		t, err := s.store.Tenants().GetByID(ctx, u.TenantID)
		if err != nil {
			return nil, fmt.Errorf("auth: entreprise: %w", err)
		}
		if t != nil {
			tr := dto.TenantFromEntity(t)
			out.Tenant = &tr
		}
	}
	if u.WarehouseID != nil {
		w, err := s.store.Warehouses().GetByID(ctx, *u.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("auth: boutique: %w", err)
		}
		if w != nil {
			wr := dto.WarehouseFromEntity(w)
			out.Warehouse = &wr
		}
	}
	s.log.Info().Int64("user", u.ID).Str("tenant", u.TenantID).Msg("login")
	return out, nil
}

// IssueLegacyToken devuelve un token opaco de 40 hex para clientes que no usan JWT.
func (s *Service) IssueLegacyToken(ctx context.Context, req dto.LoginRequest) (string, error) {
	if err := dto.Validate(req); err != nil {
		return "", err
	}
	u, err := s.authenticate(ctx, req.Identifier(), req.Password)
	if err != nil {
		return "", err
	}
	buf := make([]byte, LegacyTokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: token: %w", err)
	}
	tok := &entity.LegacyToken{Key: hex.EncodeToString(buf), UserID: u.ID, CreatedAt: s.now()}
	err = s.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.LegacyTokens().Create(ctx, tok)
	})
	if err != nil {
		return "", fmt.Errorf("auth: token: %w", err)
	}
	return tok.Key, nil
}

func (s *Service) authenticate(ctx context.Context, identifier, password string) (*entity.User, error) {
	u, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}
	hash := s.dummy
	if u != nil {
		hash = []byte(u.PasswordHash)
	}
	// Se compara siempre para que el tiempo no revele si el usuario existe.
	cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if u == nil || cmpErr != nil {
		return nil, errBadCredentials
	}
	if !u.Active {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "cuenta desactivada")
	}
	return u, nil
}

// lookup resuelve el email a su usuario cuando el identificador contiene '@'.
func (s *Service) lookup(ctx context.Context, identifier string) (*entity.User, error) {
	identifier = strings.TrimSpace(identifier)
	var (
		u   *entity.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.store.Users().GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = s.store.Users().GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("auth: usuario: %w", err)
	}
	return u, nil
}

// Refresh emite un nuevo access a partir de un refresh válido.
func (s *Service) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.RefreshResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	claims, err := s.tokens.Parse(req.Refresh, jwt.TypeRefresh)
	if err != nil {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "refresh inválido o expirado")
	}
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.Access(subjectOf(u))
	if err != nil {
		return nil, fmt.Errorf("auth: access: %w", err)
	}
	return &dto.RefreshResponse{Access: access}, nil
}

// Verify valida un access token.
func (s *Service) Verify(_ context.Context, req dto.VerifyRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	if _, err := s.tokens.Parse(req.Token, jwt.TypeAccess); err != nil {
		return domain.Errorf(domain.ErrUnauthenticated, "token inválido o expirado")
	}
	return nil
}

// Resolve traduce la cabecera Authorization ("Bearer <jwt>" o "Token <key>") en contexto.
// El usuario se relee para que una cuenta desactivada deje de autenticarse en el acto.
func (s *Service) Resolve(ctx context.Context, header string) (entity.SecurityContext, error) {
	scheme, cred, ok := strings.Cut(strings.TrimSpace(header), " ")
	cred = strings.TrimSpace(cred)
	if !ok || cred == "" {
		return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "se requiere Authorization")
	}
	var userID int64
	switch strings.ToLower(scheme) {
	case "bearer":
		claims, err := s.tokens.Parse(cred, jwt.TypeAccess)
		if err != nil {
			if errors.Is(err, jwt.ErrWrongType) {
				return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "se esperaba un access token")
			}
			return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "token inválido o expirado")
		}
		userID = claims.UserID
	case "token":
		if len(cred) != LegacyTokenLength {
			return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "token inválido")
		}
		tok, err := s.store.LegacyTokens().Get(ctx, cred)
		if err != nil {
			return entity.SecurityContext{}, fmt.Errorf("auth: token: %w", err)
		}
		if tok == nil {
			return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "token inválido")
		}
		userID = tok.UserID
	default:
		return entity.SecurityContext{}, domain.Errorf(domain.ErrUnauthenticated, "esquema de autorización no soportado")
	}
	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return entity.SecurityContext{}, err
	}
	return entity.ContextFromUser(u), nil
}

func (s *Service) activeUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auth: usuario: %w", err)
	}
	if u == nil || !u.Active {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "usuario inexistente o inactivo")
	}
	return u, nil
}

func subjectOf(u *entity.User) jwt.Subject {
	return jwt.Subject{UserID: u.ID, TenantID: u.TenantID, WarehouseID: u.WarehouseID, Role: u.Role}
}

// Permissions permisos informativos por rol devueltos en el login.
func Permissions(role string) []string {
	base := []string{"inventory.read", "billing.read", "billing.write"}
	switch role {
	case entity.RoleAdmin:
		return append(base, "inventory.write", "inventory.transfer", "users.read")
	case entity.RoleSuperadmin:
		return append(base, "inventory.write", "inventory.transfer", "users.read", "users.write",
			"tenant.manage", "subscription.manage", "audit.read")
	default:
		return base
	}
}
