package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
)

// TenantHandler entreprises: alta pública (signup) y administración.
type TenantHandler struct {
	uc *usecase.TenantUseCase
}

// NewTenantHandler construye el handler.
func NewTenantHandler(uc *usecase.TenantUseCase) *TenantHandler {
	return &TenantHandler{uc: uc}
}

// Signup godoc
// @Summary      Alta de entreprise + usuario administrador
// @Tags         entreprises
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "entreprise y administrador"
// @Success      201   {object}  dto.SignupResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entreprises [post]
func (h *TenantHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Signup(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar entreprises visibles
// @Tags         entreprises
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Filtrar por estado"
// @Param        limit   query  int   false  "Límite"
// @Param        offset  query  int   false  "Offset"
// @Success      200     {object}  dto.Envelope[dto.TenantResponse]
// @Router       /api/entreprises [get]
func (h *TenantHandler) List(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), Security(c), active, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}

// Get godoc
// @Summary      Detalle de entreprise
// @Tags         entreprises
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Código de la entreprise"
// @Success      200  {object}  dto.TenantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/entreprises/{id} [get]
func (h *TenantHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), Security(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualización parcial de entreprise
// @Description  Los campos vacíos se ignoran.
// @Tags         entreprises
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Código de la entreprise"
// @Param        body  body  dto.UpdateTenantRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.TenantResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/entreprises/{id} [patch]
func (h *TenantHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTenantRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), Security(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar entreprise (operador de plataforma)
// @Tags         entreprises
// @Security     Bearer
// @Param        id   path  string  true  "Código de la entreprise"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/entreprises/{id} [delete]
func (h *TenantHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), Security(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadLogo godoc
// @Summary      Subir el logo de la entreprise
// @Tags         entreprises
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Código de la entreprise"
// @Param        file  formData  file    true  "Imagen"
// @Success      200   {object}  dto.TenantResponse
// @Router       /api/entreprises/{id}/logo [post]
func (h *TenantHandler) UploadLogo(c *fiber.Ctx) error {
	return withUpload(c, func(up usecase.Upload) error {
		out, err := h.uc.UploadLogo(c.UserContext(), Security(c), c.Params("id"), up)
		if err != nil {
			return err
		}
		return c.JSON(out)
	})
}
