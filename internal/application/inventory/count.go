package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

const reasonCount = "inventaire"

// Count registra un inventario físico: cada fila cuyo conteo difiere produce un ajuste
// bajo el doc_ref INV-<boutique>-<timestamp>.
func (l *Ledger) Count(ctx context.Context, sc entity.SecurityContext, req dto.InventoryCountRequest) (*dto.InventoryCountResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !sc.IsAdmin() {
		return nil, domain.Errorf(domain.ErrForbidden, "los inventarios requieren rol admin")
	}
	counted := make(map[int64]int64, len(req.Lines))
	cells := make([]inventory.Cell, 0, len(req.Lines))
	for i, ln := range req.Lines {
		if _, dup := counted[ln.ProductID]; dup {
			return nil, domain.NewValidation(map[string]string{fmt.Sprintf("lines[%d].produit", i): "producto repetido"})
		}
		counted[ln.ProductID] = ln.Counted
		cells = append(cells, inventory.Cell{WarehouseID: req.WarehouseID, ProductID: ln.ProductID})
	}

	out := dto.InventoryCountResponse{Movements: []dto.MovementResponse{}}
	var tenant string
	err := l.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		w, err := uow.Warehouses().GetByID(ctx, req.WarehouseID)
		if err != nil {
			return fmt.Errorf("inventaire: boutique: %w", err)
		}
		if w == nil || !sc.CanSee(w.TenantID) {
			return domain.Errorf(domain.ErrNotFound, "boutique %d no encontrada", req.WarehouseID)
		}
		tenant = w.TenantID
		if err := l.guard.Admit(ctx, uow, tenant, quota.Action{
			Verb: quota.VerbCreate, Resource: quota.ResourceInventories, Feature: quota.FeatureInventory,
		}); err != nil {
			return err
		}
		now := l.now()
		out.DocRef, err = l.uniqueDocRef(ctx, uow, tenant, func(suffix string) string {
			return inventory.InventoryDocRef(w.ID, now, suffix)
		})
		if err != nil {
			return err
		}
		for _, c := range inventory.LockOrder(cells) {
			if _, err := ResolveCell(ctx, uow, sc, c.ProductID, c.WarehouseID); err != nil {
				return err
			}
			row, err := uow.Stocks().LockOrCreate(ctx, c.ProductID, c.WarehouseID)
			if err != nil {
				return fmt.Errorf("inventaire: bloquear fila: %w", err)
			}
			delta := counted[c.ProductID] - row.Quantity
			if delta == 0 {
				continue
			}
			_, mov, err := l.AdjustInTx(ctx, uow, sc, AdjustInput{
				ProductID: c.ProductID, WarehouseID: c.WarehouseID, Delta: delta, Reason: reasonCount, DocRef: out.DocRef,
			})
			if err != nil {
				return err
			}
			out.Movements = append(out.Movements, dto.MovementFromEntity(mov))
		}
		return audit.RecordFor(ctx, uow, sc, tenant, entity.AuditInventoryCount,
			fmt.Sprintf("inventaire %s : %d écart(s)", out.DocRef, len(out.Movements)), &req.WarehouseID,
			map[string]any{"doc_ref": out.DocRef, "lines": len(req.Lines), "adjusted": len(out.Movements)})
	})
	if err != nil {
		return nil, err
	}
	l.invalidate(ctx, tenant)
	return &out, nil
}
