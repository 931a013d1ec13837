package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/Boutique-api/internal/application/analytics"
	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/auth"
	"github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/notification"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/cache"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Store        repository.Store
	Auth         *auth.Service
	Verification *usecase.VerificationUseCase
	Contact      *usecase.ContactUseCase
	Tenants      *usecase.TenantUseCase
	Warehouses   *usecase.WarehouseUseCase
	Users        *usecase.UserUseCase
	Products     *usecase.ProductUseCase
	Parties      *usecase.PartyUseCase
	Ledger       *inventory.Ledger
	Engine       *billing.Engine
	Renderer     *billing.Renderer
	Manager      *subscription.Manager
	Guard        *subscription.Guard
	Scanner      *notification.Scanner
	Audit        *audit.UseCase
	Dashboard    *appanalytics.DashboardUseCase
	// Cache nil desactiva la caché de respuestas.
	Cache cache.Cache
	// Metrics nil no expone /metrics.
	Metrics prometheus.Gatherer
	AppName string
	Log     zerolog.Logger
}

// Router registra las rutas de la API bajo /api, más /health y /metrics.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	cached := func(endpoint string) fiber.Handler {
		return CacheResponses(deps.Cache, endpoint, deps.Log)
	}
	feature := func(f quota.Feature) fiber.Handler {
		return RequireFeature(f, func(ctx context.Context, tenantID string, f quota.Feature) (bool, error) {
			return deps.Guard.Feature(ctx, deps.Store, tenantID, f)
		})
	}

	// Auth y endpoints públicos
	authHandler := NewAuthHandler(deps.Auth, deps.Verification, deps.Contact)
	authGroup := api.Group("/auth")
	authGroup.Post("/jwt/login", authHandler.Login)
	authGroup.Post("/jwt/refresh", authHandler.Refresh)
	authGroup.Post("/jwt/verify", authHandler.Verify)
	authGroup.Post("/token/login", authHandler.TokenLogin)
	api.Post("/email-verification/verify_code", authHandler.VerifyCode)
	api.Post("/email-verification/resend_code", authHandler.ResendCode)
	api.Post("/contact/submit", authHandler.Contact)

	subscriptionHandler := NewSubscriptionHandler(deps.Manager, deps.Scanner)
	api.Get("/subscription-plans", subscriptionHandler.Plans)

	tenantHandler := NewTenantHandler(deps.Tenants)
	api.Post("/entreprises", tenantHandler.Signup)

	// Rutas protegidas (Bearer JWT o Token)
	protected := api.Group("/", AuthMiddleware(deps.Auth, deps.Log))

	tenants := protected.Group("/entreprises")
	tenants.Get("/", cached(ports.EndpointTenants), tenantHandler.List)
	tenants.Get("/:id", tenantHandler.Get)
	tenants.Patch("/:id", tenantHandler.Update)
	tenants.Delete("/:id", tenantHandler.Delete)
	tenants.Post("/:id/logo", tenantHandler.UploadLogo)

	warehouseHandler := NewWarehouseHandler(deps.Warehouses)
	warehouses := protected.Group("/boutiques")
	warehouses.Get("/", cached(ports.EndpointWarehouses), warehouseHandler.List)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	userHandler := NewUserHandler(deps.Users)
	users := protected.Group("/users")
	users.Get("/", cached(ports.EndpointUsers), userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/me", userHandler.Me)
	users.Get("/:id", userHandler.GetByID)

	productHandler := NewProductHandler(deps.Products, deps.Ledger)
	products := protected.Group("/produits")
	products.Get("/", cached(ports.EndpointProducts), productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/export", productHandler.Export)
	products.Post("/import", RequireRole(entity.RoleAdmin), productHandler.Import)
	products.Get("/reapprovisionnement", productHandler.Replenishment)
	products.Get("/barcode/:code", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Patch("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/image", productHandler.UploadImage)

	partyHandler := NewPartyHandler(deps.Parties)
	for path, kind := range map[string]string{
		"/clients":      entity.PartyCustomer,
		"/partenaires":  entity.PartyPartner,
		"/fournisseurs": entity.PartySupplier,
	} {
		g := protected.Group(path)
		g.Get("/", cached(ports.EndpointParties), partyHandler.List(kind))
		g.Post("/", partyHandler.Create(kind))
		g.Get("/:id", partyHandler.Get(kind))
	}
	categories := protected.Group("/categories")
	categories.Get("/", cached(ports.EndpointCategories), partyHandler.ListCategories)
	categories.Post("/", partyHandler.CreateCategory)

	inventoryHandler := NewInventoryHandler(deps.Ledger)
	stocks := protected.Group("/stocks")
	stocks.Get("/", cached(ports.EndpointStocks), inventoryHandler.ListStocks)
	stocks.Post("/", inventoryHandler.SetStock)
	stocks.Post("/reserve", inventoryHandler.Reserve)
	stocks.Post("/release", inventoryHandler.Release)

	movements := protected.Group("/mouvements-stock")
	movements.Get("/", cached(ports.EndpointMovements), inventoryHandler.ListMovements)
	movements.Post("/", inventoryHandler.Adjust)
	movements.Post("/transfert_stock", feature(quota.FeatureTransfers), inventoryHandler.Transfer)
	protected.Post("/inventaires", feature(quota.FeatureInventory), inventoryHandler.Count)

	invoiceHandler := NewInvoiceHandler(deps.Engine, deps.Renderer)
	invoices := protected.Group("/factures")
	invoices.Get("/", cached(ports.EndpointInvoices), invoiceHandler.List(""))
	invoices.Post("/", invoiceHandler.Create(""))
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Get("/:id/xml", invoiceHandler.XML)

	customerOrders := protected.Group("/commandes-client")
	customerOrders.Get("/", cached(ports.EndpointInvoices), invoiceHandler.List(entity.InvoiceKindCustomer))
	customerOrders.Post("/", invoiceHandler.Create(entity.InvoiceKindCustomer))
	partnerOrders := protected.Group("/commandes-partenaire", feature(quota.FeaturePartners))
	partnerOrders.Get("/", cached(ports.EndpointInvoices), invoiceHandler.List(entity.InvoiceKindPartner))
	partnerOrders.Post("/", invoiceHandler.Create(entity.InvoiceKindPartner))

	payments := protected.Group("/versements")
	payments.Get("/", cached(ports.EndpointPayments), invoiceHandler.ListPayments)
	payments.Post("/", invoiceHandler.RecordPayment)

	subs := protected.Group("/subscriptions")
	subs.Get("/current", cached(ports.EndpointSubscriptions), subscriptionHandler.Current)
	subs.Get("/limits", subscriptionHandler.Limits)
	subs.Get("/usage", subscriptionHandler.Usage)
	subs.Post("/upgrade", subscriptionHandler.ChangePlan(subscription.DirectionUpgrade))
	subs.Post("/downgrade", subscriptionHandler.ChangePlan(subscription.DirectionDowngrade))
	subs.Post("/change_plan", subscriptionHandler.ChangePlan(subscription.DirectionAny))
	subs.Post("/extend", subscriptionHandler.Extend)
	subs.Post("/check_limit", subscriptionHandler.CheckLimit)
	subs.Post("/check_feature", subscriptionHandler.CheckFeature)
	subs.Post("/send_notifications", RequireRole(), subscriptionHandler.SendNotifications)

	journalHandler := NewJournalHandler(deps.Audit, deps.Dashboard)
	protected.Get("/audit-logs", journalHandler.AuditLogs)
	protected.Get("/analytics/dashboard", cached(ports.EndpointAnalytics), journalHandler.Dashboard)
}
