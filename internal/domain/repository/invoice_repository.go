package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Invoice, error)
	Update(ctx context.Context, inv *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	ListLines(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLine, error)
	List(ctx context.Context, f InvoiceFilter, p Page) ([]*entity.Invoice, int64, error)
	CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error)
	Aggregate(ctx context.Context, tenantID string, since time.Time) (InvoiceAggregate, error)
}

// InvoiceSequenceRepository contador por (boutique, año, mes).
type InvoiceSequenceRepository interface {
	// Next bloquea (o crea con 0) la fila de la terna, incrementa y devuelve el nuevo último número.
	Next(ctx context.Context, warehouseID int64, year, month int) (int64, error)
	Get(ctx context.Context, warehouseID int64, year, month int) (*entity.InvoiceSequence, error)
}

// PaymentRepository versements inmutables.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error)
	List(ctx context.Context, f PaymentFilter, p Page) ([]*entity.Payment, int64, error)
}
