// Package bootstrap arma el grafo de dependencias compartido por los binarios de cmd/.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Boutique-api/internal/application/analytics"
	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/auth"
	"github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/notification"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/cache"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/mail"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/memory"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/storage"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/ubl"
	apphttp "github.com/jhoicas/Boutique-api/internal/interfaces/http"
	"github.com/jhoicas/Boutique-api/pkg/config"
	"github.com/jhoicas/Boutique-api/pkg/jwt"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

// Currency moneda de los documentos de factura.
const Currency = "EUR"

// App servicios construidos a partir de la configuración.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Store   repository.Store
	Cache   cache.Cache
	Metrics *metrics.Prometheus
	Worker  *notification.Worker
	Scanner *notification.Scanner
	Router  apphttp.RouterDeps

	closers []func() error
}

// Build abre el almacenamiento, carga el catálogo de planes y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Metrics: metrics.New("boutique")}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openCache(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var blobs ports.BlobStorage
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
		blobs = s3
	} else {
		log.Warn().Msg("STORAGE_BUCKET vacío: subida de imágenes y logos deshabilitada")
	}

	catalog, err := subscription.LoadCatalog(ctx, a.Store.Plans())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("catálogo de planes: %w", err)
	}
	if _, ok := catalog.Get(entity.PlanFree); !ok {
		a.Close()
		return nil, fmt.Errorf("catálogo de planes: falta el plan %s (ejecute migrate -seed-plans)", entity.PlanFree)
	}

	issuer, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("jwt: %w", err)
	}
	authSvc, err := auth.NewService(a.Store, issuer, log.Component("auth"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	tracker := subscription.NewTracker(time.Now)
	guard := subscription.NewGuard(catalog, tracker, a.Metrics, log.Component("quota"))
	manager := subscription.NewManager(a.Store, catalog, tracker, guard, a.Cache, log.Component("subscription"), subscription.Options{
		TrialDays:         cfg.Subscription.TrialDays,
		BillingPeriodDays: cfg.Subscription.BillingPeriodDays,
	})

	ledger := inventory.NewLedger(a.Store, guard, a.Cache, a.Metrics, log.Component("inventory"), time.Now)
	engine := billing.NewEngine(billing.Deps{
		Store:     a.Store,
		Guard:     guard,
		Tracker:   tracker,
		Sequencer: billing.NewSequencer(a.Store, time.Now),
		Ledger:    ledger,
		Cache:     a.Cache,
		Metrics:   a.Metrics,
		Log:       log.Component("billing"),
	})
	renderer := billing.NewRenderer(engine, pdf.NewMarotoPDFGenerator(Currency), ubl.NewRenderer(Currency))

	verification := usecase.NewVerificationUseCase(a.Store, time.Now)
	contact := usecase.NewContactUseCase(a.Store, cfg.Notify.ContactEmail, time.Now)

	a.Worker = notification.NewWorker(a.Store, mail.NewLogMailer(log.Component("mail")), a.Metrics, notification.WorkerConfig{
		From:         cfg.Notify.MailFrom,
		PollInterval: cfg.Notify.OutboxPoll,
		ClaimLease:   cfg.Notify.OutboxLease,
	}, log.Component("outbox"))
	a.Scanner = notification.NewScanner(a.Store, manager, guard, tracker, log.Component("notifications"), time.Now)

	a.Router = apphttp.RouterDeps{
		Store:        a.Store,
		Auth:         authSvc,
		Verification: verification,
		Contact:      contact,
		Tenants:      usecase.NewTenantUseCase(a.Store, manager, verification, blobs, a.Cache, log.Component("tenants"), time.Now),
		Warehouses:   usecase.NewWarehouseUseCase(a.Store, guard, a.Cache, log.Component("warehouses"), time.Now),
		Users:        usecase.NewUserUseCase(a.Store, guard, a.Cache, log.Component("users"), time.Now),
		Products:     usecase.NewProductUseCase(a.Store, guard, blobs, a.Cache, log.Component("products"), time.Now),
		Parties:      usecase.NewPartyUseCase(a.Store, a.Cache, log.Component("parties"), time.Now),
		Ledger:       ledger,
		Engine:       engine,
		Renderer:     renderer,
		Manager:      manager,
		Guard:        guard,
		Scanner:      a.Scanner,
		Audit:        audit.NewUseCase(a.Store),
		Dashboard:    analytics.NewDashboardUseCase(a.Store, guard, time.Now),
		Cache:        a.Cache,
		Metrics:      a.Metrics.Registry(),
		AppName:      cfg.App.Name,
		Log:          log.Component("http"),
	}
	return a, nil
}

// openStore en modo memoria siembra los planes del archivo; en PostgreSQL comprueba el esquema.
func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	if cfg.DB.Driver == "memory" {
		st := memory.NewStore(cfg.DB.TxTimeout)
		plans, err := subscription.LoadPlansFile(cfg.Subscription.PlansFile)
		if err != nil {
			return err
		}
		if err := subscription.Seed(ctx, st, plans); err != nil {
			return err
		}
		a.Log.Warn().Int("plans", len(plans)).Msg("almacenamiento en memoria: los datos no persisten")
		a.Store = st
		return nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })
	if err := postgres.AssertSchema(ctx, pool); err != nil {
		return err
	}
	a.Store = postgres.NewStore(pool, postgres.Options{
		Timeout:     cfg.DB.TxTimeout,
		LockTimeout: cfg.DB.LockTimeout,
		OnRetry:     a.Metrics.TxRetried,
	}, a.Log)
	return nil
}

func (a *App) openCache(ctx context.Context) error {
	if a.Config.Redis.Addr == "" {
		a.Cache = cache.NewMemoryCache()
		return nil
	}
	rc, err := cache.NewRedisCache(ctx, a.Config.Redis)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, rc.Close)
	a.Cache = rc
	return nil
}

// Close libera conexiones en orden inverso de apertura.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
