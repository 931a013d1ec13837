package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

var _ repository.Store = (*Store)(nil)

// Options ajustes del ejecutor transaccional.
type Options struct {
	// Timeout deadline de cada transacción (incluye reintentos). <= 0 lo desactiva.
	Timeout time.Duration
	// LockTimeout espera máxima por un bloqueo de fila antes de abortar con 55P03.
	LockTimeout time.Duration
	MaxAttempts int
	Backoff     time.Duration
	// OnRetry se invoca antes de cada reintento (métricas).
	OnRetry func(attempt int, err error)
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 50 * time.Millisecond
	}
	if o.LockTimeout <= 0 {
		o.LockTimeout = 5 * time.Second
	}
	return o
}

// Store implementa repository.Store sobre un pool de PostgreSQL.
// Fuera de RunInTx los repositorios usan el pool directamente (lecturas y escrituras sueltas).
type Store struct {
	pool *pgxpool.Pool
	opts Options
	log  *logger.Logger
	uow
}

// NewStore construye el store con el pool ya abierto.
func NewStore(pool *pgxpool.Pool, opts Options, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{pool: pool, opts: opts.withDefaults(), log: log, uow: uow{q: pool}}
}

// Pool expone el pool (health checks).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// RunInTx abre una transacción READ COMMITTED; commit si fn devuelve nil.
// Serialización, deadlock y lock timeout se reintentan con backoff exponencial re-ejecutando fn.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	var err error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err = s.runOnce(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrTransient) || attempt == s.opts.MaxAttempts {
			return err
		}
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("transacción abortada, reintentando")
		if s.opts.OnRetry != nil {
			s.opts.OnRetry(attempt, err)
		}
		wait := s.opts.Backoff << (attempt - 1)
		select {
		case <-ctx.Done():
			return fmt.Errorf("reintento de transacción: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return err
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	lock := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.opts.LockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, lock); err != nil {
		return mapErr("lock_timeout", err)
	}
	if err := fn(ctx, &uow{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapErr("commit transaction", err)
	}
	return nil
}

// uow liga todos los repositorios al mismo Querier.
type uow struct{ q Querier }

func (u *uow) Tenants() repository.TenantRepository            { return &TenantRepo{q: u.q} }
func (u *uow) Warehouses() repository.WarehouseRepository      { return &WarehouseRepo{q: u.q} }
func (u *uow) Users() repository.UserRepository                { return &UserRepo{q: u.q} }
func (u *uow) Products() repository.ProductRepository          { return &ProductRepo{q: u.q} }
func (u *uow) Categories() repository.CategoryRepository       { return &CategoryRepo{q: u.q} }
func (u *uow) Parties() repository.PartyRepository             { return &PartyRepo{q: u.q} }
func (u *uow) Stocks() repository.StockRepository              { return &StockRepo{q: u.q} }
func (u *uow) Movements() repository.StockMovementRepository   { return &MovementRepo{q: u.q} }
func (u *uow) Invoices() repository.InvoiceRepository          { return &InvoiceRepo{q: u.q} }
func (u *uow) Sequences() repository.InvoiceSequenceRepository { return &SequenceRepo{q: u.q} }
func (u *uow) Payments() repository.PaymentRepository          { return &PaymentRepo{q: u.q} }
func (u *uow) Plans() repository.PlanRepository                { return &PlanRepo{q: u.q} }
func (u *uow) Subscriptions() repository.SubscriptionRepository {
	return &SubscriptionRepo{q: u.q}
}
func (u *uow) Usage() repository.UsageRepository   { return &UsageRepo{q: u.q} }
func (u *uow) Audit() repository.AuditRepository   { return &AuditRepo{q: u.q} }
func (u *uow) Outbox() repository.OutboxRepository { return &OutboxRepo{q: u.q} }
func (u *uow) NotificationLog() repository.NotificationLogRepository {
	return &NotificationLogRepo{q: u.q}
}
func (u *uow) LegacyTokens() repository.LegacyTokenRepository { return &LegacyTokenRepo{q: u.q} }
func (u *uow) EmailVerifications() repository.EmailVerificationRepository {
	return &VerificationRepo{q: u.q}
}
func (u *uow) Contacts() repository.ContactRepository { return &ContactRepo{q: u.q} }
