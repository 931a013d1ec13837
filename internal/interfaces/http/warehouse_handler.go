package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
)

// WarehouseHandler boutiques del tenant.
type WarehouseHandler struct {
	uc *usecase.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear boutique
// @Tags         boutiques
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "Datos de la boutique"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/boutiques [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar boutiques
// @Tags         boutiques
// @Security     Bearer
// @Produce      json
// @Param        active      query  bool    false  "Filtrar por estado"
// @Param        entreprise  query  string  false  "Entreprise (operador de plataforma)"
// @Success      200  {object}  dto.Envelope[dto.WarehouseResponse]
// @Router       /api/boutiques [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), Security(c), tenantParam(c), active, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}

// GetByID godoc
// @Summary      Detalle de boutique
// @Tags         boutiques
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la boutique"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boutiques/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), Security(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
