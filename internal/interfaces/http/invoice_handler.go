package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// InvoiceHandler factures, commandes y versements.
type InvoiceHandler struct {
	engine   *billing.Engine
	renderer *billing.Renderer
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(engine *billing.Engine, renderer *billing.Renderer) *InvoiceHandler {
	return &InvoiceHandler{engine: engine, renderer: renderer}
}

// Create alta de factura. kind vacío respeta el del cuerpo; si no, lo fija la ruta
// (commandes-client, commandes-partenaire).
//
// @Summary      Crear factura
// @Tags         factures
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/factures [post]
// @Router       /api/commandes-client [post]
// @Router       /api/commandes-partenaire [post]
func (h *InvoiceHandler) Create(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.CreateInvoiceRequest
		if err := parseBody(c, &in); err != nil {
			return err
		}
		if kind != "" {
			in.Kind = kind
		}
		out, err := h.engine.CreateInvoice(c.UserContext(), Security(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// List listado paginado (30 por página por defecto).
//
// @Summary      Listar factures
// @Tags         factures
// @Security     Bearer
// @Produce      json
// @Param        boutique    query  int     false  "Filtrar por boutique"
// @Param        status      query  string  false  "pending, partial, paid, cancelled"
// @Param        client      query  int     false  "Filtrar por cliente"
// @Param        partenaire  query  int     false  "Filtrar por partenaire"
// @Param        from        query  string  false  "Desde (AAAA-MM-JJ)"
// @Param        to          query  string  false  "Hasta (AAAA-MM-JJ)"
// @Success      200  {object}  dto.Envelope[dto.InvoiceResponse]
// @Router       /api/factures [get]
// @Router       /api/commandes-client [get]
// @Router       /api/commandes-partenaire [get]
func (h *InvoiceHandler) List(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c)
		if err != nil {
			return err
		}
		q := billing.InvoiceQuery{Tenant: tenantParam(c), Kind: kind, Status: c.Query("status")}
		if kind == "" {
			q.Kind = c.Query("kind")
		}
		if q.WarehouseID, err = queryInt64(c, "boutique", "warehouse"); err != nil {
			return err
		}
		if q.CustomerID, err = queryInt64(c, "client", "customer"); err != nil {
			return err
		}
		if q.PartnerID, err = queryInt64(c, "partenaire", "partner"); err != nil {
			return err
		}
		if q.From, err = queryTime(c, "from", false); err != nil {
			return err
		}
		if q.To, err = queryTime(c, "to", true); err != nil {
			return err
		}
		out, err := h.engine.List(c.UserContext(), Security(c), q, p)
		if err != nil {
			return err
		}
		return c.JSON(out.WithBase(listBase(c)))
	}
}

// Get godoc
// @Summary      Detalle de factura con líneas y versements
// @Tags         factures
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/factures/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.engine.Get(c.UserContext(), Security(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Anular factura
// @Description  Solo facturas sin versements. El stock debitado se repone.
// @Tags         factures
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/factures/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.engine.Cancel(c.UserContext(), Security(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar la factura en PDF
// @Tags         factures
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la factura"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/factures/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	return h.download(c, h.renderer.PDF)
}

// XML godoc
// @Summary      Descargar la factura en UBL 2.1
// @Tags         factures
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  int  true  "ID de la factura"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/factures/{id}/xml [get]
func (h *InvoiceHandler) XML(c *fiber.Ctx) error {
	return h.download(c, h.renderer.XML)
}

type renderFunc func(ctx context.Context, sc entity.SecurityContext, invoiceID int64) (*billing.File, error)

func (h *InvoiceHandler) download(c *fiber.Ctx, render renderFunc) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	f, err := render(c.UserContext(), Security(c), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+f.Name+`"`)
	return c.Send(f.Body)
}

// RecordPayment godoc
// @Summary      Registrar un versement
// @Tags         versements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPaymentRequest  true  "Factura e importe"
// @Success      201   {object}  dto.PaymentReceipt
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/versements [post]
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.engine.RecordPayment(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPayments godoc
// @Summary      Listar versements
// @Tags         versements
// @Security     Bearer
// @Produce      json
// @Param        facture   query  int  false  "Filtrar por factura"
// @Param        boutique  query  int  false  "Filtrar por boutique"
// @Success      200  {object}  dto.Envelope[dto.PaymentResponse]
// @Router       /api/versements [get]
func (h *InvoiceHandler) ListPayments(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	q := billing.PaymentQuery{Tenant: tenantParam(c)}
	if q.InvoiceID, err = queryInt64(c, "facture", "invoice"); err != nil {
		return err
	}
	if q.WarehouseID, err = queryInt64(c, "boutique", "warehouse"); err != nil {
		return err
	}
	out, err := h.engine.ListPayments(c.UserContext(), Security(c), q, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}
