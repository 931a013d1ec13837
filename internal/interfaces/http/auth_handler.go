package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/auth"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
)

// AuthHandler login, refresh, verify y los endpoints públicos de cuenta.
type AuthHandler struct {
	auth         *auth.Service
	verification *usecase.VerificationUseCase
	contact      *usecase.ContactUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(a *auth.Service, verification *usecase.VerificationUseCase, contact *usecase.ContactUseCase) *AuthHandler {
	return &AuthHandler{auth: a, verification: verification, contact: contact}
}

// Login godoc
// @Summary      Iniciar sesión (JWT)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username o email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/jwt/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.auth.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Refresh godoc
// @Summary      Renovar el access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RefreshRequest  true  "refresh token"
// @Success      200   {object}  dto.RefreshResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/jwt/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in dto.RefreshRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.auth.Refresh(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Validar un access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyRequest  true  "token"
// @Success      200   {object}  dto.MessageResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/jwt/verify [post]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.auth.Verify(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "token válido"})
}

// TokenLogin godoc
// @Summary      Obtener un token de API (esquema "Token <key>")
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username o email, password"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/token/login [post]
func (h *AuthHandler) TokenLogin(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	key, err := h.auth.IssueLegacyToken(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"auth_token": key})
}

// VerifyCode godoc
// @Summary      Verificar el correo con el código recibido
// @Tags         email-verification
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyCodeRequest  true  "email y código"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/email-verification/verify_code [post]
func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	var in dto.VerifyCodeRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.verification.VerifyCode(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "correo verificado"})
}

// ResendCode godoc
// @Summary      Reenviar el código de verificación
// @Tags         email-verification
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResendCodeRequest  true  "email"
// @Success      200   {object}  dto.MessageResponse
// @Router       /api/email-verification/resend_code [post]
func (h *AuthHandler) ResendCode(c *fiber.Ctx) error {
	var in dto.ResendCodeRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.verification.ResendCode(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "si la cuenta existe, se envió un nuevo código"})
}

// Contact godoc
// @Summary      Formulario público de contacto
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ContactRequest  true  "mensaje"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/contact/submit [post]
func (h *AuthHandler) Contact(c *fiber.Ctx) error {
	var in dto.ContactRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.contact.Submit(c.UserContext(), in); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "mensaje recibido"})
}
