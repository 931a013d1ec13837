package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
)

// PartyHandler clientes, partenaires, proveedores y categorías del catálogo.
type PartyHandler struct {
	uc *usecase.PartyUseCase
}

// NewPartyHandler construye el handler.
func NewPartyHandler(uc *usecase.PartyUseCase) *PartyHandler {
	return &PartyHandler{uc: uc}
}

// Create devuelve el handler de alta para un tipo de tercero.
//
// @Summary      Crear tercero (cliente, partenaire o proveedor)
// @Tags         terceros
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePartyRequest  true  "Datos del tercero"
// @Success      201   {object}  dto.PartyResponse
// @Router       /api/clients [post]
// @Router       /api/partenaires [post]
// @Router       /api/fournisseurs [post]
func (h *PartyHandler) Create(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.CreatePartyRequest
		if err := parseBody(c, &in); err != nil {
			return err
		}
		out, err := h.uc.Create(c.UserContext(), Security(c), kind, tenantParam(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// List listado paginado de un tipo de tercero.
//
// @Summary      Listar terceros
// @Tags         terceros
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope[dto.PartyResponse]
// @Router       /api/clients [get]
// @Router       /api/partenaires [get]
// @Router       /api/fournisseurs [get]
func (h *PartyHandler) List(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c)
		if err != nil {
			return err
		}
		out, err := h.uc.List(c.UserContext(), Security(c), kind, tenantParam(c), p)
		if err != nil {
			return err
		}
		return c.JSON(out.WithBase(listBase(c)))
	}
}

// Get detalle; un id de otro tipo o de otro tenant es 404.
//
// @Summary      Detalle de tercero
// @Tags         terceros
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del tercero"
// @Success      200  {object}  dto.PartyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
// @Router       /api/partenaires/{id} [get]
// @Router       /api/fournisseurs/{id} [get]
func (h *PartyHandler) Get(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		out, err := h.uc.Get(c.UserContext(), Security(c), kind, id)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *PartyHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.CreateCategory(c.UserContext(), Security(c), tenantParam(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope[dto.CategoryResponse]
// @Router       /api/categories [get]
func (h *PartyHandler) ListCategories(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListCategories(c.UserContext(), Security(c), tenantParam(c), p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}
