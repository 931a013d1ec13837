package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/notification"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
)

// SubscriptionHandler planes, suscripción vigente, límites y notificaciones.
type SubscriptionHandler struct {
	manager *subscription.Manager
	scanner *notification.Scanner
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(manager *subscription.Manager, scanner *notification.Scanner) *SubscriptionHandler {
	return &SubscriptionHandler{manager: manager, scanner: scanner}
}

// Plans godoc
// @Summary      Catálogo de planes activos
// @Tags         subscriptions
// @Produce      json
// @Success      200  {array}  dto.PlanResponse
// @Router       /api/subscription-plans [get]
func (h *SubscriptionHandler) Plans(c *fiber.Ctx) error {
	return c.JSON(h.manager.Plans())
}

// Current godoc
// @Summary      Suscripción vigente
// @Tags         subscriptions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SubscriptionResponse
// @Router       /api/subscriptions/current [get]
func (h *SubscriptionHandler) Current(c *fiber.Ctx) error {
	out, err := h.manager.Current(c.UserContext(), Security(c), tenantParam(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Limits godoc
// @Summary      Topes del plan con uso actual
// @Tags         subscriptions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LimitsResponse
// @Router       /api/subscriptions/limits [get]
func (h *SubscriptionHandler) Limits(c *fiber.Ctx) error {
	out, err := h.manager.Limits(c.UserContext(), Security(c), tenantParam(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Usage godoc
// @Summary      Contadores de uso del periodo
// @Tags         subscriptions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UsageResponse
// @Router       /api/subscriptions/usage [get]
func (h *SubscriptionHandler) Usage(c *fiber.Ctx) error {
	out, err := h.manager.Usage(c.UserContext(), Security(c), tenantParam(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ChangePlan devuelve el handler para upgrade, downgrade o change_plan.
//
// @Summary      Cambiar de plan
// @Tags         subscriptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePlanRequest  true  "Plan destino"
// @Success      200   {object}  dto.ChangePlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/subscriptions/upgrade [post]
// @Router       /api/subscriptions/downgrade [post]
// @Router       /api/subscriptions/change_plan [post]
func (h *SubscriptionHandler) ChangePlan(dir subscription.Direction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.ChangePlanRequest
		if err := parseBody(c, &in); err != nil {
			return err
		}
		out, err := h.manager.ChangePlan(c.UserContext(), Security(c), in, dir)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// Extend godoc
// @Summary      Prolongar la suscripción
// @Tags         subscriptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExtendRequest  true  "Días a añadir"
// @Success      200   {object}  dto.SubscriptionResponse
// @Router       /api/subscriptions/extend [post]
func (h *SubscriptionHandler) Extend(c *fiber.Ctx) error {
	var in dto.ExtendRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.manager.Extend(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CheckLimit godoc
// @Summary      Consultar un tope del plan
// @Tags         subscriptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckLimitRequest  true  "Recurso"
// @Success      200   {object}  dto.LimitStatus
// @Router       /api/subscriptions/check_limit [post]
func (h *SubscriptionHandler) CheckLimit(c *fiber.Ctx) error {
	var in dto.CheckLimitRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.manager.CheckLimit(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CheckFeature godoc
// @Summary      Consultar una funcionalidad del plan
// @Tags         subscriptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckFeatureRequest  true  "Funcionalidad"
// @Success      200   {object}  dto.CheckFeatureResponse
// @Router       /api/subscriptions/check_feature [post]
func (h *SubscriptionHandler) CheckFeature(c *fiber.Ctx) error {
	var in dto.CheckFeatureRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.manager.CheckFeature(c.UserContext(), Security(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SendNotifications godoc
// @Summary      Lanzar una pasada del despachador de notificaciones
// @Description  Sin banderas se ejecutan todas las categorías.
// @Tags         subscriptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendNotificationsRequest  false  "Categorías"
// @Success      200   {object}  dto.NotificationReport
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/subscriptions/send_notifications [post]
func (h *SubscriptionHandler) SendNotifications(c *fiber.Ctx) error {
	if !Security(c).IsPlatformAdmin() {
		return domain.Errorf(domain.ErrForbidden, "solo el operador de plataforma lanza el despachador")
	}
	var in dto.SendNotificationsRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.scanner.Scan(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
