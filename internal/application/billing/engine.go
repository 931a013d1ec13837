package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	appinventory "github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

const (
	reasonSale   = "vente"
	reasonCancel = "retour"
	methodCash   = "cash"
)

// Engine facturas y versements.
type Engine struct {
	store     repository.Store
	guard     *subscription.Guard
	tracker   *subscription.Tracker
	sequencer *Sequencer
	ledger    *appinventory.Ledger
	cache     ports.CacheInvalidator
	metrics   ports.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// Deps dependencias del motor.
type Deps struct {
	Store     repository.Store
	Guard     *subscription.Guard
	Tracker   *subscription.Tracker
	Sequencer *Sequencer
	Ledger    *appinventory.Ledger
	Cache     ports.CacheInvalidator
	Metrics   ports.Metrics
	Log       zerolog.Logger
	Now       func() time.Time
}

// NewEngine construye el motor.
func NewEngine(d Deps) *Engine {
	if d.Cache == nil {
		d.Cache = ports.NopInvalidator{}
	}
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Engine{
		store: d.Store, guard: d.Guard, tracker: d.Tracker, sequencer: d.Sequencer, ledger: d.Ledger,
		cache: d.Cache, metrics: d.Metrics, log: d.Log, now: d.Now,
	}
}

type pricedLine struct {
	product *entity.Product
	line    entity.InvoiceLine
}

// CreateInvoice crea la factura con sus líneas en una transacción. Una línea inválida revierte
// todo, incluido el número de la secuencia.
func (e *Engine) CreateInvoice(ctx context.Context, sc entity.SecurityContext, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Kind == "" {
		req.Kind = entity.InvoiceKindCustomer
	}
	if err := checkDestination(req); err != nil {
		return nil, err
	}
	if sc.Role == entity.RoleUser && sc.WarehouseID != nil && *sc.WarehouseID != req.WarehouseID {
		return nil, domain.Errorf(domain.ErrForbidden, "usuario limitado a su boutique")
	}

	var (
		out    dto.InvoiceResponse
		tenant string
	)
	err := e.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		w, err := uow.Warehouses().GetByID(ctx, req.WarehouseID)
		if err != nil {
			return fmt.Errorf("factura: boutique: %w", err)
		}
		if w == nil || !sc.CanSee(w.TenantID) {
			return domain.Errorf(domain.ErrNotFound, "boutique %d no encontrada", req.WarehouseID)
		}
		tenant = w.TenantID
		action := quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceInvoices}
		if req.Kind == entity.InvoiceKindPartner {
			action.Feature = quota.FeaturePartners
		}
		if err := e.guard.Admit(ctx, uow, tenant, action); err != nil {
			return err
		}
		if err := e.checkParty(ctx, uow, tenant, req); err != nil {
			return err
		}
		lines, err := e.priceLines(ctx, uow, tenant, req.Lines)
		if err != nil {
			return err
		}

		now := e.now()
		_, number, err := e.sequencer.NextInTx(ctx, uow, req.WarehouseID, now)
		if err != nil {
			return err
		}
		inv := &entity.Invoice{
			TenantID: tenant, WarehouseID: req.WarehouseID, Kind: req.Kind, Number: number,
			CustomerID: req.CustomerID, PartnerID: req.PartnerID,
			Total: decimal.Zero, Outstanding: decimal.Zero, Status: entity.InvoiceStatusPending,
			CreatorUserID: sc.UserID, Notes: req.Notes, CreatedAt: now, UpdatedAt: now,
		}
		if err := uow.Invoices().Create(ctx, inv); err != nil {
			return fmt.Errorf("factura: crear: %w", err)
		}
		total := decimal.Zero
		for i := range lines {
			lines[i].line.InvoiceID = inv.ID
			if err := uow.Invoices().CreateLine(ctx, &lines[i].line); err != nil {
				return fmt.Errorf("factura: línea %d: %w", i, err)
			}
			total = total.Add(lines[i].line.LineTotal)
			out.Lines = append(out.Lines, dto.InvoiceLineFromEntity(&lines[i].line))
		}
		if req.DebitStock {
			if err := e.debit(ctx, uow, sc, inv, lines); err != nil {
				return err
			}
		}
		inv.Total = total
		inv.Outstanding = total
		inv.Status = billing.Status(total, total, false)
		if err := uow.Invoices().Update(ctx, inv); err != nil {
			return fmt.Errorf("factura: totales: %w", err)
		}
		if err := e.tracker.Increment(ctx, uow, tenant, quota.ResourceInvoices); err != nil {
			return err
		}
		lineRows := out.Lines
		out = dto.InvoiceFromEntity(inv)
		out.Lines = lineRows
		return audit.RecordFor(ctx, uow, sc, tenant, entity.AuditInvoiceCreate,
			fmt.Sprintf("factura %s por %s", number, total.StringFixed(2)), &req.WarehouseID,
			map[string]any{"number": number, "total": total, "lines": len(lines), "debit_stock": req.DebitStock})
	})
	if err != nil {
		return nil, err
	}
	e.metrics.InvoiceCreated()
	e.invalidate(ctx, tenant, req.DebitStock)
	e.log.Info().Str("tenant", tenant).Str("number", out.Number).Msg("factura creada")
	return &out, nil
}

func checkDestination(req dto.CreateInvoiceRequest) error {
	switch req.Kind {
	case entity.InvoiceKindCustomer:
		if req.CustomerID == nil {
			return domain.NewValidation(map[string]string{"client": "requerido para una factura cliente"})
		}
		if req.PartnerID != nil {
			return domain.NewValidation(map[string]string{"partenaire": "no admitido en una factura cliente"})
		}
	case entity.InvoiceKindPartner:
		if req.PartnerID == nil {
			return domain.NewValidation(map[string]string{"partenaire": "requerido para una factura partenaire"})
		}
		if req.CustomerID != nil {
			return domain.NewValidation(map[string]string{"client": "no admitido en una factura partenaire"})
		}
	}
	return nil
}

func (e *Engine) checkParty(ctx context.Context, uow repository.UnitOfWork, tenantID string, req dto.CreateInvoiceRequest) error {
	id, kind, field := req.CustomerID, entity.PartyCustomer, "client"
	if req.Kind == entity.InvoiceKindPartner {
		id, kind, field = req.PartnerID, entity.PartyPartner, "partenaire"
	}
	p, err := uow.Parties().GetByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("factura: %s: %w", field, err)
	}
	if p == nil || p.TenantID != tenantID || p.Kind != kind {
		return domain.NewValidation(map[string]string{field: "no encontrado"})
	}
	return nil
}

// priceLines resuelve los productos y valida todas las líneas; los errores se devuelven juntos.
func (e *Engine) priceLines(ctx context.Context, uow repository.UnitOfWork, tenantID string, in []dto.InvoiceLineRequest) ([]pricedLine, error) {
	fields := map[string]string{}
	out := make([]pricedLine, 0, len(in))
	for i, l := range in {
		field := fmt.Sprintf("lines[%d]", i)
		p, err := uow.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("factura: producto: %w", err)
		}
		if p == nil || p.TenantID != tenantID {
			fields[field+".produit"] = "no encontrado"
			continue
		}
		price := p.SalePrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		if err := billing.ValidateLine(field, billing.LineInput{
			Qty: l.Qty, UnitPrice: price, PurchasePrice: p.PurchasePrice, SalePrice: p.SalePrice, Justification: l.PriceJustification,
		}); err != nil {
			for k, v := range domain.DetailsOf(err) {
				fields[k] = v
			}
			continue
		}
		out = append(out, pricedLine{product: p, line: entity.InvoiceLine{
			ProductID: p.ID, Qty: l.Qty, UnitPrice: price, OriginalUnitPrice: p.SalePrice,
			PriceJustification: l.PriceJustification, LineTotal: billing.LineTotal(l.Qty, price),
		}})
	}
	if len(fields) > 0 {
		return nil, domain.NewValidation(fields)
	}
	return out, nil
}

// debit descuenta el stock de cada producto en orden de bloqueo, con doc_ref = número de factura.
func (e *Engine) debit(ctx context.Context, uow repository.UnitOfWork, sc entity.SecurityContext, inv *entity.Invoice, lines []pricedLine) error {
	qty := map[int64]int64{}
	cells := make([]inventory.Cell, 0, len(lines))
	for _, l := range lines {
		qty[l.product.ID] += l.line.Qty
		cells = append(cells, inventory.Cell{WarehouseID: inv.WarehouseID, ProductID: l.product.ID})
	}
	for _, c := range inventory.LockOrder(cells) {
		if _, _, err := e.ledger.AdjustInTx(ctx, uow, sc, appinventory.AdjustInput{
			ProductID: c.ProductID, WarehouseID: c.WarehouseID, Delta: -qty[c.ProductID], Reason: reasonSale, DocRef: inv.Number,
		}); err != nil {
			return err
		}
	}
	return nil
}

// RecordPayment registra un versement inmutable y actualiza saldo y estado.
func (e *Engine) RecordPayment(ctx context.Context, sc entity.SecurityContext, req dto.RecordPaymentRequest) (*dto.PaymentReceipt, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if sc.UserID == 0 {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "el versement requiere un usuario identificado")
	}
	var (
		out    dto.PaymentReceipt
		tenant string
	)
	err := e.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().GetForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("versement: factura: %w", err)
		}
		if inv == nil || !sc.CanSee(inv.TenantID) {
			return domain.Errorf(domain.ErrNotFound, "factura %d no encontrada", req.InvoiceID)
		}
		tenant = inv.TenantID
		if err := e.guard.Admit(ctx, uow, tenant, quota.Action{Verb: quota.VerbCreate}); err != nil {
			return err
		}
		outstanding, status, err := billing.ApplyPayment(inv, req.Amount)
		if err != nil {
			return err
		}
		method := req.Method
		if method == "" {
			method = methodCash
		}
		p := &entity.Payment{
			InvoiceID: inv.ID, TenantID: tenant, WarehouseID: inv.WarehouseID, Amount: req.Amount,
			Method: method, ActorUserID: sc.UserID, At: e.now(),
		}
		if err := uow.Payments().Create(ctx, p); err != nil {
			return fmt.Errorf("versement: crear: %w", err)
		}
		inv.Outstanding = outstanding
		inv.Status = status
		inv.UpdatedAt = p.At
		if err := uow.Invoices().Update(ctx, inv); err != nil {
			return fmt.Errorf("versement: factura: %w", err)
		}
		out = dto.PaymentReceipt{Payment: dto.PaymentFromEntity(p), Invoice: dto.InvoiceFromEntity(inv)}
		return audit.RecordFor(ctx, uow, sc, tenant, entity.AuditPaymentCreate,
			fmt.Sprintf("versement de %s sur %s", req.Amount.StringFixed(2), inv.Number), &inv.WarehouseID,
			map[string]any{"invoice": inv.Number, "amount": req.Amount, "outstanding": outstanding, "status": status})
	})
	if err != nil {
		return nil, err
	}
	e.metrics.PaymentRecorded()
	if err := e.cache.InvalidateTenant(ctx, tenant, ports.EndpointInvoices, ports.EndpointPayments, ports.EndpointAnalytics); err != nil {
		e.log.Warn().Err(err).Str("tenant", tenant).Msg("invalidación de caché fallida")
	}
	return &out, nil
}

// Cancel anula una factura sin versements. Las líneas se conservan; el stock descontado
// por la factura se reintegra.
func (e *Engine) Cancel(ctx context.Context, sc entity.SecurityContext, invoiceID int64) (*dto.InvoiceResponse, error) {
	if !sc.IsAdmin() {
		return nil, domain.Errorf(domain.ErrForbidden, "anular requiere rol admin")
	}
	var (
		out      dto.InvoiceResponse
		tenant   string
		restored bool
	)
	err := e.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().GetForUpdate(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("anular: factura: %w", err)
		}
		if inv == nil || !sc.CanSee(inv.TenantID) {
			return domain.Errorf(domain.ErrNotFound, "factura %d no encontrada", invoiceID)
		}
		tenant = inv.TenantID
		if inv.Status == entity.InvoiceStatusCancelled {
			return domain.NewInvariant("la factura ya está anulada")
		}
		payments, err := uow.Payments().ListByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("anular: versements: %w", err)
		}
		if len(payments) > 0 {
			return domain.NewInvariant("no se puede anular una factura con versements")
		}
		movs, _, err := uow.Movements().List(ctx, repository.MovementFilter{TenantID: tenant, DocRef: inv.Number}, repository.Page{Limit: 1000})
		if err != nil {
			return fmt.Errorf("anular: movimientos: %w", err)
		}
		cells := make([]inventory.Cell, 0, len(movs))
		back := map[inventory.Cell]int64{}
		for _, m := range movs {
			if m.Qty >= 0 {
				continue
			}
			c := inventory.Cell{WarehouseID: m.WarehouseID, ProductID: m.ProductID}
			back[c] += -m.Qty
			cells = append(cells, c)
		}
		for _, c := range inventory.LockOrder(cells) {
			if _, _, err := e.ledger.AdjustInTx(ctx, uow, sc, appinventory.AdjustInput{
				ProductID: c.ProductID, WarehouseID: c.WarehouseID, Delta: back[c], Reason: reasonCancel, DocRef: inv.Number,
			}); err != nil {
				return err
			}
			restored = true
		}
		inv.Status = billing.Status(inv.Total, inv.Outstanding, true)
		inv.UpdatedAt = e.now()
		if err := uow.Invoices().Update(ctx, inv); err != nil {
			return fmt.Errorf("anular: %w", err)
		}
		out = dto.InvoiceFromEntity(inv)
		return audit.RecordFor(ctx, uow, sc, tenant, entity.AuditInvoiceCancel,
			"factura "+inv.Number+" anulada", &inv.WarehouseID, map[string]any{"number": inv.Number, "stock_restored": restored})
	})
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, tenant, restored)
	return &out, nil
}

// Get detalle con líneas y versements. Una factura de otro tenant es NotFound.
func (e *Engine) Get(ctx context.Context, sc entity.SecurityContext, invoiceID int64) (*dto.InvoiceResponse, error) {
	inv, err := e.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("factura: %w", err)
	}
	if inv == nil || !sc.CanSee(inv.TenantID) {
		return nil, domain.ErrNotFound
	}
	lines, err := e.store.Invoices().ListLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("factura: líneas: %w", err)
	}
	payments, err := e.store.Payments().ListByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("factura: versements: %w", err)
	}
	out := dto.InvoiceFromEntity(inv)
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.InvoiceLineFromEntity(l))
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, dto.PaymentFromEntity(p))
	}
	return &out, nil
}

// InvoiceQuery filtros de GET /factures.
type InvoiceQuery struct {
	Tenant      string
	WarehouseID *int64
	Kind        string
	Status      string
	CustomerID  *int64
	PartnerID   *int64
	From, To    *time.Time
}

// List facturas del tenant.
func (e *Engine) List(ctx context.Context, sc entity.SecurityContext, q InvoiceQuery, page dto.PageRequest) (*dto.Envelope[dto.InvoiceResponse], error) {
	page = page.Normalize(dto.InvoicesPageSize)
	tenantID, empty := dto.ScopeTenant(sc, q.Tenant)
	if empty {
		return dto.NewEnvelope([]dto.InvoiceResponse{}, 0, page), nil
	}
	invs, total, err := e.store.Invoices().List(ctx, repository.InvoiceFilter{
		TenantID: tenantID, WarehouseID: q.WarehouseID, Kind: q.Kind, Status: q.Status,
		CustomerID: q.CustomerID, PartnerID: q.PartnerID, From: q.From, To: q.To,
	}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("facturas: %w", err)
	}
	items := make([]dto.InvoiceResponse, 0, len(invs))
	for _, inv := range invs {
		items = append(items, dto.InvoiceFromEntity(inv))
	}
	return dto.NewEnvelope(items, total, page), nil
}

// PaymentQuery filtros de GET /versements.
type PaymentQuery struct {
	Tenant      string
	InvoiceID   *int64
	WarehouseID *int64
}

// ListPayments versements del tenant.
func (e *Engine) ListPayments(ctx context.Context, sc entity.SecurityContext, q PaymentQuery, page dto.PageRequest) (*dto.Envelope[dto.PaymentResponse], error) {
	page = page.Normalize(dto.DefaultPageSize)
	tenantID, empty := dto.ScopeTenant(sc, q.Tenant)
	if empty {
		return dto.NewEnvelope([]dto.PaymentResponse{}, 0, page), nil
	}
	ps, total, err := e.store.Payments().List(ctx, repository.PaymentFilter{
		TenantID: tenantID, InvoiceID: q.InvoiceID, WarehouseID: q.WarehouseID,
	}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("versements: %w", err)
	}
	items := make([]dto.PaymentResponse, 0, len(ps))
	for _, p := range ps {
		items = append(items, dto.PaymentFromEntity(p))
	}
	return dto.NewEnvelope(items, total, page), nil
}

func (e *Engine) invalidate(ctx context.Context, tenantID string, stock bool) {
	eps := []string{ports.EndpointInvoices, ports.EndpointPayments, ports.EndpointAnalytics, ports.EndpointSubscriptions}
	if stock {
		eps = append(eps, ports.EndpointStocks, ports.EndpointMovements, ports.EndpointProducts)
	}
	if err := e.cache.InvalidateTenant(ctx, tenantID, eps...); err != nil {
		e.log.Warn().Err(err).Str("tenant", tenantID).Msg("invalidación de caché fallida")
	}
}
