package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// CodeValidity vigencia del código de verificación de correo.
const CodeValidity = 15 * time.Minute

var errBadCode = domain.NewValidation(map[string]string{"code": "código inválido o expirado"})

// VerificationUseCase verificación de correo con código de 6 dígitos.
type VerificationUseCase struct {
	store repository.Store
	now   func() time.Time
}

// NewVerificationUseCase construye el caso de uso.
func NewVerificationUseCase(store repository.Store, now func() time.Time) *VerificationUseCase {
	if now == nil {
		now = time.Now
	}
	return &VerificationUseCase{store: store, now: now}
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("código: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IssueInTx genera un código nuevo (reemplaza el anterior) y encola el correo.
func (uc *VerificationUseCase) IssueInTx(ctx context.Context, uow repository.UnitOfWork, u *entity.User) error {
	if u.Email == "" {
		return nil
	}
	code, err := newCode()
	if err != nil {
		return err
	}
	now := uc.now()
	v := &entity.EmailVerification{UserID: u.ID, Code: code, ExpiresAt: now.Add(CodeValidity), CreatedAt: now}
	if err := uow.EmailVerifications().Upsert(ctx, v); err != nil {
		return fmt.Errorf("verificación: %w", err)
	}
	return outbox.Enqueue(ctx, uow, outbox.EmailCode(u.TenantID, u.Email, code, int(CodeValidity/time.Minute)))
}

// VerifyCode marca el correo como verificado si el código coincide y sigue vigente.
func (uc *VerificationUseCase) VerifyCode(ctx context.Context, req dto.VerifyCodeRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	return uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		u, err := uow.Users().GetByEmail(ctx, strings.ToLower(req.Email))
		if err != nil {
			return fmt.Errorf("verificación: %w", err)
		}
		if u == nil {
			return errBadCode
		}
		v, err := uow.EmailVerifications().Get(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("verificación: %w", err)
		}
		if v == nil || v.Used || !uc.now().Before(v.ExpiresAt) ||
			subtle.ConstantTimeCompare([]byte(v.Code), []byte(req.Code)) != 1 {
			return errBadCode
		}
		if err := uow.EmailVerifications().MarkUsed(ctx, u.ID); err != nil {
			return fmt.Errorf("verificación: %w", err)
		}
		u.EmailVerified = true
		return uow.Users().Update(ctx, u)
	})
}

// ResendCode reenvía un código. Un correo desconocido no produce error para no revelar cuentas.
func (uc *VerificationUseCase) ResendCode(ctx context.Context, req dto.ResendCodeRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	return uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		u, err := uow.Users().GetByEmail(ctx, strings.ToLower(req.Email))
		if err != nil {
			return fmt.Errorf("verificación: %w", err)
		}
		if u == nil {
			return nil
		}
		if u.EmailVerified {
			return domain.NewValidation(map[string]string{"email": "ya verificado"})
		}
		return uc.IssueInTx(ctx, uow, u)
	})
}

// ContactUseCase formulario público de contacto.
type ContactUseCase struct {
	store    repository.Store
	platform string
	now      func() time.Time
}

// NewContactUseCase platform es la dirección que recibe los mensajes.
func NewContactUseCase(store repository.Store, platform string, now func() time.Time) *ContactUseCase {
	if now == nil {
		now = time.Now
	}
	return &ContactUseCase{store: store, platform: platform, now: now}
}

// Submit guarda el mensaje y lo reenvía a la plataforma.
func (uc *ContactUseCase) Submit(ctx context.Context, req dto.ContactRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	m := &entity.ContactMessage{
		Name: strings.TrimSpace(req.Name), Email: req.Email, Subject: strings.TrimSpace(req.Subject),
		Message: req.Message, CreatedAt: uc.now(),
	}
	return uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Contacts().Create(ctx, m); err != nil {
			return fmt.Errorf("contacto: %w", err)
		}
		if uc.platform == "" {
			return nil
		}
		return outbox.Enqueue(ctx, uow, outbox.Contact(uc.platform, m))
	})
}
