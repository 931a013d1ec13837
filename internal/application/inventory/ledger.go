package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Ledger mutador central del stock. Toda variación de cantidad pasa por AdjustInTx,
// que bloquea la fila, aplica el delta, registra el movimiento y suma el delta al total del producto.
type Ledger struct {
	store   repository.Store
	guard   *subscription.Guard
	cache   ports.CacheInvalidator
	metrics ports.Metrics
	log     zerolog.Logger
	now     func() time.Time
	suffix  func() string
}

// NewLedger construye el ledger. now nil = time.Now.
func NewLedger(store repository.Store, guard *subscription.Guard, cache ports.CacheInvalidator, metrics ports.Metrics, log zerolog.Logger, now func() time.Time) *Ledger {
	if cache == nil {
		cache = ports.NopInvalidator{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, guard: guard, cache: cache, metrics: metrics, log: log, now: now, suffix: randomSuffix}
}

// WithDocRefSuffix sustituye el generador de sufijos de doc_ref (tests).
func (l *Ledger) WithDocRefSuffix(fn func() string) *Ledger {
	l.suffix = fn
	return l
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:docRefSuffixLen]
}

const (
	docRefSuffixLen  = 6
	docRefMaxRetries = 3
)

// uniqueDocRef genera un doc_ref sin movimientos previos en el tenant. Dos documentos del
// mismo segundo comparten el prefijo temporal y se distinguen por el sufijo.
func (l *Ledger) uniqueDocRef(ctx context.Context, uow repository.UnitOfWork, tenantID string, build func(suffix string) string) (string, error) {
	for i := 0; i < docRefMaxRetries; i++ {
		ref := build(l.suffix())
		_, n, err := uow.Movements().List(ctx, repository.MovementFilter{TenantID: tenantID, DocRef: ref}, repository.Page{Limit: 1})
		if err != nil {
			return "", fmt.Errorf("ledger: doc_ref: %w", err)
		}
		if n == 0 {
			return ref, nil
		}
	}
	return "", domain.Errorf(domain.ErrConflict, "no se pudo generar un doc_ref único")
}

// AdjustInput variación de una celda.
type AdjustInput struct {
	ProductID   int64
	WarehouseID int64
	Delta       int64
	Reason      string
	DocRef      string
	// Kind fuerza el tipo de movimiento; vacío = KindFor(Delta, Reason).
	Kind string
}

// Cell producto y boutique ya validados para una operación.
type Cell struct {
	Product   *entity.Product
	Warehouse *entity.Warehouse
}

// ResolveCell carga producto y boutique y comprueba que sean del mismo tenant y visibles para sc.
// Un producto o boutique de otro tenant se reporta como NotFound; entre sí, como CrossTenant.
func ResolveCell(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, productID, warehouseID int64) (*Cell, error) {
	p, err := uow.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("ledger: producto: %w", err)
	}
	if p == nil || !sc.CanSee(p.TenantID) {
		return nil, domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", productID)
	}
	w, err := uow.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("ledger: boutique: %w", err)
	}
	if w == nil || !sc.CanSee(w.TenantID) {
		return nil, domain.Errorf(domain.ErrNotFound, "boutique %d no encontrada", warehouseID)
	}
	if p.TenantID != w.TenantID {
		return nil, domain.Errorf(domain.ErrCrossTenant, "el producto y la boutique pertenecen a entreprises distintas")
	}
	return &Cell{Product: p, Warehouse: w}, nil
}

// bound un usuario ligado a una boutique solo opera sobre ella.
func bound(sc entity.SecurityContext, warehouseID int64) error {
	if sc.Role == entity.RoleUser && sc.WarehouseID != nil && *sc.WarehouseID != warehouseID {
		return domain.Errorf(domain.ErrForbidden, "usuario limitado a su boutique")
	}
	return nil
}

// AdjustInTx aplica el delta dentro de la transacción del llamante.
func (l *Ledger) AdjustInTx(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, in AdjustInput) (*entity.StockRow, *entity.StockMovement, error) {
	if in.Delta == 0 {
		return nil, nil, domain.NewValidation(map[string]string{"quantity": "no puede ser 0"})
	}
	cell, err := ResolveCell(ctx, uow, sc, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, nil, err
	}
	row, err := uow.Stocks().LockOrCreate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: bloquear fila: %w", err)
	}
	next, err := inventory.Apply(*row, in.Delta)
	if err != nil {
		return nil, nil, err
	}
	if err := uow.Stocks().Save(ctx, &next); err != nil {
		return nil, nil, fmt.Errorf("ledger: guardar fila: %w", err)
	}
	kind := in.Kind
	if kind == "" {
		kind = inventory.KindFor(in.Delta, in.Reason)
	}
	mov := &entity.StockMovement{
		TenantID:    cell.Product.TenantID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Kind:        kind,
		Qty:         in.Delta,
		QtyBefore:   row.Quantity,
		QtyAfter:    next.Quantity,
		DocRef:      in.DocRef,
		Reason:      in.Reason,
		ActorUserID: sc.UserID,
		At:          l.now(),
	}
	if err := uow.Movements().Create(ctx, mov); err != nil {
		return nil, nil, fmt.Errorf("ledger: movimiento: %w", err)
	}
	if _, err := uow.Products().AddToTotal(ctx, in.ProductID, in.Delta); err != nil {
		return nil, nil, fmt.Errorf("ledger: total del producto: %w", err)
	}
	return &next, mov, nil
}

// Adjust ajuste manual (POST /mouvements-stock).
func (l *Ledger) Adjust(ctx context.Context, sc entity.SecurityContext, req dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := bound(sc, req.WarehouseID); err != nil {
		return nil, err
	}
	var (
		out    dto.MovementResponse
		tenant string
	)
	err := l.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		_, mov, err := l.AdjustInTx(ctx, uow, sc, AdjustInput{
			ProductID: req.ProductID, WarehouseID: req.WarehouseID, Delta: req.Delta, Reason: req.Reason, DocRef: req.DocRef,
		})
		if err != nil {
			return err
		}
		tenant = mov.TenantID
		out = dto.MovementFromEntity(mov)
		return audit.RecordFor(ctx, uow, sc, tenant, entity.AuditStockAdjust,
			fmt.Sprintf("ajuste %+d del producto %d", req.Delta, req.ProductID), &req.WarehouseID, out)
	})
	if err != nil {
		return nil, err
	}
	l.invalidate(ctx, tenant)
	return &out, nil
}

// SetStock fija la cantidad absoluta de una celda (POST /stocks) vía un ajuste por la diferencia.
func (l *Ledger) SetStock(ctx context.Context, sc entity.SecurityContext, req dto.CreateStockRequest) (*dto.StockRowResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := bound(sc, req.WarehouseID); err != nil {
		return nil, err
	}
	var (
		out    dto.StockRowResponse
		tenant string
	)
	err := l.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		cell, err := ResolveCell(ctx, uow, sc, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		tenant = cell.Product.TenantID
		row, err := uow.Stocks().LockOrCreate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return fmt.Errorf("ledger: bloquear fila: %w", err)
		}
		if delta := req.Quantity - row.Quantity; delta != 0 {
			row, _, err = l.AdjustInTx(ctx, uow, sc, AdjustInput{
				ProductID: req.ProductID, WarehouseID: req.WarehouseID, Delta: delta, Reason: inventory.ReasonAdjust,
			})
			if err != nil {
				return err
			}
		}
		if req.Slot != "" && req.Slot != row.Slot {
			row.Slot = req.Slot
			if err := uow.Stocks().Save(ctx, row); err != nil {
				return fmt.Errorf("ledger: guardar fila: %w", err)
			}
		}
		out = dto.StockRowFromEntity(row)
		return audit.RecordFor(ctx, uow, sc, tenant, entity.AuditStockAdjust,
			fmt.Sprintf("stock fijado a %d", req.Quantity), &req.WarehouseID, out)
	})
	if err != nil {
		return nil, err
	}
	l.invalidate(ctx, tenant)
	return &out, nil
}

// Reserve pasa qty de disponible a reservado.
func (l *Ledger) Reserve(ctx context.Context, sc entity.SecurityContext, req dto.ReserveRequest) (*dto.StockRowResponse, error) {
	return l.reservation(ctx, sc, req, entity.AuditStockReserve, inventory.Reserve)
}

// Release devuelve qty de reservado a disponible.
func (l *Ledger) Release(ctx context.Context, sc entity.SecurityContext, req dto.ReserveRequest) (*dto.StockRowResponse, error) {
	return l.reservation(ctx, sc, req, entity.AuditStockRelease, inventory.Release)
}

func (l *Ledger) reservation(ctx context.Context, sc entity.SecurityContext, req dto.ReserveRequest, kind string,
	apply func(entity.StockRow, int64) (entity.StockRow, error)) (*dto.StockRowResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := bound(sc, req.WarehouseID); err != nil {
		return nil, err
	}
	var (
		out    dto.StockRowResponse
		tenant string
	)
	err := l.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		cell, err := ResolveCell(ctx, uow, sc, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		tenant = cell.Product.TenantID
		row, err := uow.Stocks().LockOrCreate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return fmt.Errorf("ledger: bloquear fila: %w", err)
		}
		next, err := apply(*row, req.Qty)
		if err != nil {
			return err
		}
		if err := uow.Stocks().Save(ctx, &next); err != nil {
			return fmt.Errorf("ledger: guardar fila: %w", err)
		}
		out = dto.StockRowFromEntity(&next)
		return audit.RecordFor(ctx, uow, sc, tenant, kind,
			fmt.Sprintf("%s %d del producto %d", kind, req.Qty, req.ProductID), &req.WarehouseID, out)
	})
	if err != nil {
		return nil, err
	}
	l.invalidate(ctx, tenant)
	return &out, nil
}

func (l *Ledger) invalidate(ctx context.Context, tenantID string) {
	if tenantID == "" {
		return
	}
	if err := l.cache.InvalidateTenant(ctx, tenantID, ports.EndpointStocks, ports.EndpointMovements, ports.EndpointProducts); err != nil {
		l.log.Warn().Err(err).Str("tenant", tenantID).Msg("invalidación de caché fallida")
	}
}
