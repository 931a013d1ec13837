package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
	"github.com/jhoicas/Boutique-api/internal/domain"
)

// ProductHandler catálogo de produits (protegido).
type ProductHandler struct {
	uc     *usecase.ProductUseCase
	ledger *inventory.Ledger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, ledger *inventory.Ledger) *ProductHandler {
	return &ProductHandler{uc: uc, ledger: ledger}
}

// Create godoc
// @Summary      Crear produit
// @Tags         produits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del produit"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/produits [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Detalle de produit
// @Tags         produits
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del produit"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/produits/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
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

// GetByBarcode godoc
// @Summary      Buscar produit por código de barras
// @Tags         produits
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de barras"
// @Success      200   {object}  dto.ProductResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/produits/barcode/{code} [get]
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	out, err := h.uc.GetByBarcode(c.UserContext(), Security(c), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar produits
// @Tags         produits
// @Security     Bearer
// @Produce      json
// @Param        categorie    query  int     false  "Filtrar por categoría"
// @Param        fournisseur  query  int     false  "Filtrar por proveedor"
// @Param        active       query  bool    false  "Filtrar por estado"
// @Param        sku          query  string  false  "SKU exacto"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.Envelope[dto.ProductResponse]
// @Router       /api/produits [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	q := usecase.ProductQuery{Tenant: tenantParam(c), SKU: c.Query("sku"), Barcode: c.Query("barcode")}
	if q.CategoryID, err = queryInt64(c, "categorie", "category"); err != nil {
		return err
	}
	if q.SupplierID, err = queryInt64(c, "fournisseur", "supplier"); err != nil {
		return err
	}
	if q.Active, err = queryBool(c, "active"); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), Security(c), q, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}

// Update godoc
// @Summary      Actualización parcial de produit
// @Tags         produits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID del produit"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/produits/{id} [patch]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateProductRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), Security(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar produit
// @Tags         produits
// @Security     Bearer
// @Param        id   path  int  true  "ID del produit"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/produits/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), Security(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage godoc
// @Summary      Subir la imagen del produit
// @Tags         produits
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "ID del produit"
// @Param        file  formData  file  true  "Imagen"
// @Success      200   {object}  dto.ProductResponse
// @Router       /api/produits/{id}/image [post]
func (h *ProductHandler) UploadImage(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return withUpload(c, func(up usecase.Upload) error {
		out, err := h.uc.UploadImage(c.UserContext(), Security(c), id, up)
		if err != nil {
			return err
		}
		return c.JSON(out)
	})
}

// Export godoc
// @Summary      Exportar el catálogo en CSV
// @Tags         produits
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {file}  file
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/produits/export [get]
func (h *ProductHandler) Export(c *fiber.Ctx) error {
	body, err := h.uc.Export(c.UserContext(), Security(c), tenantParam(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="produits.csv"`)
	return c.Send(body)
}

// Import godoc
// @Summary      Importar produits desde CSV
// @Description  Acepta multipart (campo file) o el CSV como cuerpo. Cada fila pasa por el control de cuota.
// @Tags         produits
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  false  "CSV"
// @Success      200   {object}  dto.ImportResult
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/produits/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return domain.NewValidation(map[string]string{"file": "archivo ilegible"})
		}
		defer f.Close()
		out, err := h.uc.Import(c.UserContext(), Security(c), tenantParam(c), f)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
	if len(c.Body()) == 0 {
		return domain.NewValidation(map[string]string{"file": "CSV requerido"})
	}
	out, err := h.uc.Import(c.UserContext(), Security(c), tenantParam(c), bytes.NewReader(c.Body()))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Sugerencias de reaprovisionamiento
// @Description  Produits cuyo total está en o bajo su punto de pedido, ordenados por prioridad.
// @Tags         produits
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  inventory.ReplenishmentSuggestion
// @Router       /api/produits/reapprovisionnement [get]
func (h *ProductHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.ledger.Replenishment(c.UserContext(), Security(c), tenantParam(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
