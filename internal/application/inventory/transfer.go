package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Transfer mueve qty de una boutique a otra del mismo tenant en una sola transacción:
// débito en origen, crédito en destino y dos movimientos con el mismo doc_ref.
func (l *Ledger) Transfer(ctx context.Context, sc entity.SecurityContext, req dto.TransferRequest) (*dto.TransferReceipt, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !sc.IsAdmin() {
		return nil, domain.Errorf(domain.ErrForbidden, "las transferencias requieren rol admin")
	}
	var (
		out    dto.TransferReceipt
		tenant string
	)
	err := l.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		src, err := ResolveCell(ctx, uow, sc, req.ProductID, req.FromWarehouseID)
		if err != nil {
			return err
		}
		dst, err := ResolveCell(ctx, uow, sc, req.ProductID, req.ToWarehouseID)
		if err != nil {
			return err
		}
		tenant = src.Warehouse.TenantID
		if err := l.guard.Admit(ctx, uow, tenant, quota.Action{
			Verb: quota.VerbCreate, Resource: quota.ResourceTransfers, Feature: quota.FeatureTransfers,
		}); err != nil {
			return err
		}

		now := l.now()
		docRef, err := l.uniqueDocRef(ctx, uow, tenant, func(suffix string) string {
			return inventory.TransferDocRef(src.Warehouse.Name, dst.Warehouse.Name, now, suffix)
		})
		if err != nil {
			return err
		}
		for _, c := range inventory.LockOrder([]inventory.Cell{
			{WarehouseID: req.FromWarehouseID, ProductID: req.ProductID},
			{WarehouseID: req.ToWarehouseID, ProductID: req.ProductID},
		}) {
			if _, err := uow.Stocks().LockOrCreate(ctx, c.ProductID, c.WarehouseID); err != nil {
				return fmt.Errorf("transfert: bloquear fila: %w", err)
			}
		}
		reason := req.Reason
		if reason == "" {
			reason = inventory.ReasonTransfer
		}
		srcRow, debit, err := l.AdjustInTx(ctx, uow, sc, AdjustInput{
			ProductID: req.ProductID, WarehouseID: req.FromWarehouseID, Delta: -req.Qty, Reason: reason, DocRef: docRef,
			Kind: entity.MovementTransfer,
		})
		if err != nil {
			return err
		}
		dstRow, credit, err := l.AdjustInTx(ctx, uow, sc, AdjustInput{
			ProductID: req.ProductID, WarehouseID: req.ToWarehouseID, Delta: req.Qty, Reason: reason, DocRef: docRef,
			Kind: entity.MovementTransfer,
		})
		if err != nil {
			return err
		}
		out = dto.TransferReceipt{
			DocRef: docRef,
			Source: dto.StockRowFromEntity(srcRow),
			Target: dto.StockRowFromEntity(dstRow),
			Debit:  dto.MovementFromEntity(debit),
			Credit: dto.MovementFromEntity(credit),
		}
		if err := audit.RecordFor(ctx, uow, sc, tenant, entity.AuditStockTransfer,
			fmt.Sprintf("transfert %s : %d × %s", docRef, req.Qty, src.Product.SKU), &req.FromWarehouseID,
			map[string]any{"doc_ref": docRef, "from": req.FromWarehouseID, "to": req.ToWarehouseID, "quantity": req.Qty, "reason": reason}); err != nil {
			return err
		}
		return l.notifyTransfer(ctx, uow, sc, src, dst, docRef, req.Qty)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.TransferDone()
	l.invalidate(ctx, tenant)
	l.log.Info().Str("tenant", tenant).Str("doc_ref", out.DocRef).Int64("qty", req.Qty).Msg("transferencia registrada")
	return &out, nil
}

// notifyTransfer encola un aviso por destinatario: iniciador, superadmins del tenant y
// responsables de la boutique destino. Una dirección recibe un único aviso.
func (l *Ledger) notifyTransfer(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, src, dst *Cell, docRef string, qty int64) error {
	tenantID := src.Warehouse.TenantID
	parties := []outbox.TransferParty{{Email: sc.Email, Role: "initiator"}}
	admins, err := uow.Users().ListByRole(ctx, tenantID, entity.RoleSuperadmin)
	if err != nil {
		return fmt.Errorf("transfert: superadmins: %w", err)
	}
	for _, u := range admins {
		parties = append(parties, outbox.TransferParty{Email: u.Email, Role: "superadmin"})
	}
	managers, err := uow.Users().ListWarehouseAdmins(ctx, dst.Warehouse.ID)
	if err != nil {
		return fmt.Errorf("transfert: responsables destino: %w", err)
	}
	for _, u := range managers {
		parties = append(parties, outbox.TransferParty{Email: u.Email, Role: "destination"})
	}
	seen := map[string]bool{}
	for _, p := range parties {
		if p.Email == "" || seen[p.Email] {
			continue
		}
		seen[p.Email] = true
		msg := outbox.Transfer(tenantID, p, docRef, src.Product.Name, qty, src.Warehouse.Name, dst.Warehouse.Name)
		if err := outbox.Enqueue(ctx, uow, msg); err != nil {
			return err
		}
	}
	return nil
}
