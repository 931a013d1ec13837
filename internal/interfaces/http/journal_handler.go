package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Boutique-api/internal/application/analytics"
	"github.com/jhoicas/Boutique-api/internal/application/audit"
)

// JournalHandler audit-logs y dashboard de analítica.
type JournalHandler struct {
	audit     *audit.UseCase
	dashboard *appanalytics.DashboardUseCase
}

// NewJournalHandler construye el handler.
func NewJournalHandler(a *audit.UseCase, dashboard *appanalytics.DashboardUseCase) *JournalHandler {
	return &JournalHandler{audit: a, dashboard: dashboard}
}

// AuditLogs godoc
// @Summary      Diario de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        boutique  query  int     false  "Filtrar por boutique"
// @Param        kind      query  string  false  "Tipo de acción"
// @Param        user      query  int     false  "Actor"
// @Param        from      query  string  false  "Desde (AAAA-MM-JJ)"
// @Param        to        query  string  false  "Hasta (AAAA-MM-JJ)"
// @Success      200  {object}  dto.Envelope[dto.AuditEntryResponse]
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *JournalHandler) AuditLogs(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	f := audit.ListFilter{Tenant: tenantParam(c), Kind: c.Query("kind")}
	if f.WarehouseID, err = queryInt64(c, "boutique", "warehouse"); err != nil {
		return err
	}
	if f.ActorUserID, err = queryInt64(c, "user"); err != nil {
		return err
	}
	if f.From, err = queryTime(c, "from", false); err != nil {
		return err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return err
	}
	out, err := h.audit.List(c.UserContext(), Security(c), f, p)
	if err != nil {
		return err
	}
	return c.JSON(out.WithBase(listBase(c)))
}

// Dashboard godoc
// @Summary      Indicadores del mes
// @Description  Facturas y ingresos del mes, saldo pendiente y filas con stock bajo o agotado.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/dashboard [get]
func (h *JournalHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.dashboard.GetSummary(c.UserContext(), Security(c), tenantParam(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
