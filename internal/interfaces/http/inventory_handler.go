package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
)

// InventoryHandler stocks, mouvements, transferencias e inventarios.
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// ListStocks godoc
// @Summary      Listar filas de stock
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        boutique  query  int   false  "Filtrar por boutique"
// @Param        produit   query  int   false  "Filtrar por produit"
// @Param        low       query  bool  false  "Solo filas bajo el mínimo"
// @Success      200  {object}  dto.Envelope[dto.StockRowResponse]
// @Router       /api/stocks [get]
func (h *InventoryHandler) ListStocks(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	q := inventory.StockQuery{Tenant: tenantParam(c)}
	if q.WarehouseID, err = queryInt64(c, "boutique", "warehouse"); err != nil {
		return err
	}
	if q.ProductID, err = queryInt64(c, "produit", "product"); err != nil {
		return err
	}
	low, err := queryBool(c, "low")
	if err != nil {
		return err
	}
	q.LowOnly = low != nil && *low
	out, err := h.ledger.ListStocks(c.UserContext(), Security(c), q, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}

// SetStock godoc
// @Summary      Fijar la cantidad de una fila de stock
// @Description  La diferencia se registra como mouvement de ajuste.
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "produit, boutique, cantidad"
// @Success      201   {object}  dto.StockRowResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stocks [post]
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.ledger.SetStock(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reserve godoc
// @Summary      Reservar stock
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "produit, boutique, cantidad"
// @Success      200   {object}  dto.StockRowResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stocks/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.ledger.Reserve(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Release godoc
// @Summary      Liberar stock reservado
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "produit, boutique, cantidad"
// @Success      200   {object}  dto.StockRowResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stocks/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.ledger.Release(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar mouvements de stock
// @Tags         mouvements-stock
// @Security     Bearer
// @Produce      json
// @Param        boutique  query  int     false  "Filtrar por boutique"
// @Param        produit   query  int     false  "Filtrar por produit"
// @Param        type      query  string  false  "Tipo de mouvement"
// @Param        doc_ref   query  string  false  "Referencia de documento"
// @Param        from      query  string  false  "Desde (AAAA-MM-JJ)"
// @Param        to        query  string  false  "Hasta (AAAA-MM-JJ)"
// @Success      200  {object}  dto.Envelope[dto.MovementResponse]
// @Router       /api/mouvements-stock [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	q := inventory.MovementQuery{Tenant: tenantParam(c), Kind: c.Query("type"), DocRef: c.Query("doc_ref")}
	if q.WarehouseID, err = queryInt64(c, "boutique", "warehouse"); err != nil {
		return err
	}
	if q.ProductID, err = queryInt64(c, "produit", "product"); err != nil {
		return err
	}
	if q.From, err = queryTime(c, "from", false); err != nil {
		return err
	}
	if q.To, err = queryTime(c, "to", true); err != nil {
		return err
	}
	out, err := h.ledger.ListMovements(c.UserContext(), Security(c), q, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}

// Adjust godoc
// @Summary      Registrar un mouvement de stock (entrada o salida)
// @Tags         mouvements-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Delta firmado"
// @Success      201   {object}  dto.MovementResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/mouvements-stock [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.ledger.Adjust(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Transferir stock entre boutiques
// @Tags         mouvements-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Origen, destino y cantidad"
// @Success      201   {object}  dto.TransferReceipt
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/mouvements-stock/transfert_stock [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.ledger.Transfer(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Count godoc
// @Summary      Registrar un inventario físico
// @Tags         inventaires
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InventoryCountRequest  true  "Cantidades contadas"
// @Success      201   {object}  dto.InventoryCountResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventaires [post]
func (h *InventoryHandler) Count(c *fiber.Ctx) error {
	var in dto.InventoryCountRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.ledger.Count(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
