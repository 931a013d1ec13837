package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Tracker contadores de uso. Boutiques, usuarios y productos se derivan contando filas;
// solo las facturas del mes son un contador almacenado.
type Tracker struct {
	now func() time.Time
}

// NewTracker crea el tracker con el reloj dado (nil = time.Now).
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Rollover asegura la fila del mes de now. Idempotente dentro del mismo mes.
func (t *Tracker) Rollover(ctx context.Context, uow repository.UnitOfWork, tenantID string, now time.Time) (*entity.Usage, error) {
	u, err := uow.Usage().Ensure(ctx, tenantID, entity.PeriodOf(now))
	if err != nil {
		return nil, fmt.Errorf("usage: rollover %s: %w", tenantID, err)
	}
	return u, nil
}

// Count uso actual de un recurso.
func (t *Tracker) Count(ctx context.Context, uow repository.UnitOfWork, tenantID string, r quota.Resource) (int64, error) {
	now := t.now()
	var (
		n   int64
		err error
	)
	switch r {
	case quota.ResourceWarehouses:
		n, err = uow.Warehouses().CountByTenant(ctx, tenantID)
	case quota.ResourceUsers:
		n, err = uow.Users().CountByTenant(ctx, tenantID)
	case quota.ResourceProducts:
		n, err = uow.Products().CountByTenant(ctx, tenantID)
	case quota.ResourceInvoices:
		var u *entity.Usage
		u, err = t.Rollover(ctx, uow, tenantID, now)
		if u != nil {
			n = u.InvoicesThisPeriod
		}
	case quota.ResourceInventories:
		n, err = uow.Movements().CountDocRefs(ctx, tenantID, inventory.InventoryPrefix, entity.PeriodOf(now))
	case quota.ResourceTransfers:
		n, err = uow.Movements().CountDocRefs(ctx, tenantID, inventory.TransferPrefix, entity.PeriodOf(now))
	default:
		return 0, fmt.Errorf("usage: recurso desconocido %q", r)
	}
	if err != nil {
		return 0, fmt.Errorf("usage: contar %s: %w", r, err)
	}
	return n, nil
}

// Snapshot todos los contadores del tenant más la fila del periodo.
func (t *Tracker) Snapshot(ctx context.Context, uow repository.UnitOfWork, tenantID string) (quota.Counters, *entity.Usage, error) {
	usage, err := t.Rollover(ctx, uow, tenantID, t.now())
	if err != nil {
		return nil, nil, err
	}
	out := make(quota.Counters, len(quota.Resources))
	for _, r := range quota.Resources {
		if r == quota.ResourceInvoices {
			out[r] = usage.InvoicesThisPeriod
			continue
		}
		n, err := t.Count(ctx, uow, tenantID, r)
		if err != nil {
			return nil, nil, err
		}
		out[r] = n
	}
	return out, usage, nil
}

// Increment registra un evento contado. Debe llamarse dentro de la transacción que lo crea;
// para recursos derivados no hace nada.
func (t *Tracker) Increment(ctx context.Context, uow repository.UnitOfWork, tenantID string, r quota.Resource) error {
	if r != quota.ResourceInvoices {
		return nil
	}
	period := entity.PeriodOf(t.now())
	if _, err := uow.Usage().Ensure(ctx, tenantID, period); err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	if err := uow.Usage().IncrementInvoices(ctx, tenantID, period); err != nil {
		return fmt.Errorf("usage: incrementar facturas: %w", err)
	}
	return nil
}
