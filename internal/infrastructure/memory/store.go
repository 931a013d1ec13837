package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store almacenamiento en memoria con semántica de transacción por snapshot:
// RunInTx trabaja sobre una copia y la publica solo si fn devuelve nil.
// Un único mutex serializa las transacciones (equivale a bloquear todas las filas).
type Store struct {
	mu      sync.RWMutex
	st      *state
	timeout time.Duration
	root    *uow
}

// NewStore crea un store vacío. timeout <= 0 desactiva el deadline de transacción.
func NewStore(timeout time.Duration) *Store {
	s := &Store{st: newState(), timeout: timeout}
	s.root = &uow{db: &db{store: s}}
	return s
}

// RunInTx implementa repository.TxRunner.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: iniciar transacción: %w", err)
	}
	work := s.st.clone()
	if err := fn(ctx, &uow{db: &db{store: s, tx: work}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: transacción abortada: %w", err)
	}
	s.st = work
	return nil
}

// SeedSequence fija el contador de una terna (datos de prueba y migraciones de datos).
func (s *Store) SeedSequence(seq entity.InvoiceSequence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.sequences[seqKey{seq.WarehouseID, seq.Year, seq.Month}] = seq
}

func (s *Store) Tenants() repository.TenantRepository       { return s.root.Tenants() }
func (s *Store) Warehouses() repository.WarehouseRepository { return s.root.Warehouses() }
func (s *Store) Users() repository.UserRepository           { return s.root.Users() }
func (s *Store) Products() repository.ProductRepository     { return s.root.Products() }
func (s *Store) Categories() repository.CategoryRepository  { return s.root.Categories() }
func (s *Store) Parties() repository.PartyRepository        { return s.root.Parties() }
func (s *Store) Stocks() repository.StockRepository         { return s.root.Stocks() }
func (s *Store) Movements() repository.StockMovementRepository {
	return s.root.Movements()
}
func (s *Store) Invoices() repository.InvoiceRepository          { return s.root.Invoices() }
func (s *Store) Sequences() repository.InvoiceSequenceRepository { return s.root.Sequences() }
func (s *Store) Payments() repository.PaymentRepository          { return s.root.Payments() }
func (s *Store) Plans() repository.PlanRepository                { return s.root.Plans() }
func (s *Store) Subscriptions() repository.SubscriptionRepository {
	return s.root.Subscriptions()
}
func (s *Store) Usage() repository.UsageRepository { return s.root.Usage() }
func (s *Store) Audit() repository.AuditRepository { return s.root.Audit() }
func (s *Store) Outbox() repository.OutboxRepository {
	return s.root.Outbox()
}
func (s *Store) NotificationLog() repository.NotificationLogRepository {
	return s.root.NotificationLog()
}
func (s *Store) LegacyTokens() repository.LegacyTokenRepository { return s.root.LegacyTokens() }
func (s *Store) EmailVerifications() repository.EmailVerificationRepository {
	return s.root.EmailVerifications()
}
func (s *Store) Contacts() repository.ContactRepository { return s.root.Contacts() }

// db resuelve sobre qué estado opera un repositorio: la copia de la transacción
// o el estado publicado (con su mutex).
type db struct {
	store *Store
	tx    *state
}

func (d *db) read(fn func(st *state)) {
	if d.tx != nil {
		fn(d.tx)
		return
	}
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	fn(d.store.st)
}

func (d *db) write(fn func(st *state) error) error {
	if d.tx != nil {
		return fn(d.tx)
	}
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	return fn(d.store.st)
}

type uow struct{ db *db }

func (u *uow) Tenants() repository.TenantRepository            { return tenantRepo{u.db} }
func (u *uow) Warehouses() repository.WarehouseRepository      { return warehouseRepo{u.db} }
func (u *uow) Users() repository.UserRepository                { return userRepo{u.db} }
func (u *uow) Products() repository.ProductRepository          { return productRepo{u.db} }
func (u *uow) Categories() repository.CategoryRepository       { return categoryRepo{u.db} }
func (u *uow) Parties() repository.PartyRepository             { return partyRepo{u.db} }
func (u *uow) Stocks() repository.StockRepository              { return stockRepo{u.db} }
func (u *uow) Movements() repository.StockMovementRepository   { return movementRepo{u.db} }
func (u *uow) Invoices() repository.InvoiceRepository          { return invoiceRepo{u.db} }
func (u *uow) Sequences() repository.InvoiceSequenceRepository { return sequenceRepo{u.db} }
func (u *uow) Payments() repository.PaymentRepository          { return paymentRepo{u.db} }
func (u *uow) Plans() repository.PlanRepository                { return planRepo{u.db} }
func (u *uow) Subscriptions() repository.SubscriptionRepository {
	return subscriptionRepo{u.db}
}
func (u *uow) Usage() repository.UsageRepository   { return usageRepo{u.db} }
func (u *uow) Audit() repository.AuditRepository   { return auditRepo{u.db} }
func (u *uow) Outbox() repository.OutboxRepository { return outboxRepo{u.db} }
func (u *uow) NotificationLog() repository.NotificationLogRepository {
	return notificationLogRepo{u.db}
}
func (u *uow) LegacyTokens() repository.LegacyTokenRepository { return legacyTokenRepo{u.db} }
func (u *uow) EmailVerifications() repository.EmailVerificationRepository {
	return verificationRepo{u.db}
}
func (u *uow) Contacts() repository.ContactRepository { return contactRepo{u.db} }
