package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// File documento renderizado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Document carga todo lo necesario para renderizar la factura. Otro tenant = NotFound.
func (e *Engine) Document(ctx context.Context, sc entity.SecurityContext, invoiceID int64) (*Document, error) {
	inv, err := e.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("documento: factura: %w", err)
	}
	if inv == nil || !sc.CanSee(inv.TenantID) {
		return nil, domain.ErrNotFound
	}
	doc := &Document{Invoice: inv}
	if doc.Tenant, err = e.store.Tenants().GetByID(ctx, inv.TenantID); err != nil {
		return nil, fmt.Errorf("documento: entreprise: %w", err)
	}
	if doc.Warehouse, err = e.store.Warehouses().GetByID(ctx, inv.WarehouseID); err != nil {
		return nil, fmt.Errorf("documento: boutique: %w", err)
	}
	partyID := inv.CustomerID
	if inv.Kind == entity.InvoiceKindPartner {
		partyID = inv.PartnerID
	}
	if partyID != nil {
		if doc.Party, err = e.store.Parties().GetByID(ctx, *partyID); err != nil {
			return nil, fmt.Errorf("documento: tercero: %w", err)
		}
	}
	lines, err := e.store.Invoices().ListLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("documento: líneas: %w", err)
	}
	for _, l := range lines {
		dl := DocumentLine{InvoiceLine: *l}
		if p, err := e.store.Products().GetByID(ctx, l.ProductID); err != nil {
			return nil, fmt.Errorf("documento: producto: %w", err)
		} else if p != nil {
			dl.SKU, dl.ProductName = p.SKU, p.Name
		}
		doc.Lines = append(doc.Lines, dl)
	}
	if doc.Payments, err = e.store.Payments().ListByInvoice(ctx, inv.ID); err != nil {
		return nil, fmt.Errorf("documento: versements: %w", err)
	}
	return doc, nil
}

// Renderer genera los documentos descargables de una factura.
type Renderer struct {
	engine *Engine
	pdf    InvoicePDFGenerator
	xml    InvoiceXMLRenderer
}

// NewRenderer construye el renderer; xml puede ser nil si no se expone el UBL.
func NewRenderer(engine *Engine, pdf InvoicePDFGenerator, xml InvoiceXMLRenderer) *Renderer {
	return &Renderer{engine: engine, pdf: pdf, xml: xml}
}

// PDF renderiza la factura en PDF.
func (r *Renderer) PDF(ctx context.Context, sc entity.SecurityContext, invoiceID int64) (*File, error) {
	doc, err := r.engine.Document(ctx, sc, invoiceID)
	if err != nil {
		return nil, err
	}
	body, err := r.pdf.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return &File{Name: "facture_" + doc.Invoice.Number + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

// XML renderiza la factura en UBL 2.1.
func (r *Renderer) XML(ctx context.Context, sc entity.SecurityContext, invoiceID int64) (*File, error) {
	if r.xml == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "exportación XML no configurada")
	}
	doc, err := r.engine.Document(ctx, sc, invoiceID)
	if err != nil {
		return nil, err
	}
	body, err := r.xml.RenderInvoiceXML(doc)
	if err != nil {
		return nil, fmt.Errorf("xml: %w", err)
	}
	return &File{Name: "facture_" + doc.Invoice.Number + ".xml", ContentType: "application/xml", Body: body}, nil
}
