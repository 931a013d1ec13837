package repository

import "context"

// UnitOfWork expone todos los repositorios ligados a la misma conexión o transacción.
type UnitOfWork interface {
	Tenants() TenantRepository
	Warehouses() WarehouseRepository
	Users() UserRepository
	Products() ProductRepository
	Categories() CategoryRepository
	Parties() PartyRepository
	Stocks() StockRepository
	Movements() StockMovementRepository
	Invoices() InvoiceRepository
	Sequences() InvoiceSequenceRepository
	Payments() PaymentRepository
	Plans() PlanRepository
	Subscriptions() SubscriptionRepository
	Usage() UsageRepository
	Audit() AuditRepository
	Outbox() OutboxRepository
	NotificationLog() NotificationLogRepository
	LegacyTokens() LegacyTokenRepository
	EmailVerifications() EmailVerificationRepository
	Contacts() ContactRepository
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil, rollback en otro caso.
// fn recibe el ctx con el deadline de la transacción; errores transitorios se reintentan
// re-ejecutando fn completo, por lo que fn no debe tener efectos fuera de uow.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

// Store acceso fuera de transacción (lecturas) más el ejecutor transaccional.
type Store interface {
	UnitOfWork
	TxRunner
}
