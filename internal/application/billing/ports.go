package billing

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// Document datos completos de una factura para sus representaciones (PDF, UBL).
type Document struct {
	Invoice   *entity.Invoice
	Tenant    *entity.Tenant
	Warehouse *entity.Warehouse
	// Party cliente o partenaire según el tipo de factura.
	Party    *entity.Party
	Lines    []DocumentLine
	Payments []*entity.Payment
}

// DocumentLine línea enriquecida con los datos del producto.
type DocumentLine struct {
	entity.InvoiceLine
	SKU         string
	ProductName string
}

// InvoicePDFGenerator genera la representación PDF.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc *Document) ([]byte, error)
}

// InvoiceXMLRenderer genera la representación UBL 2.1.
type InvoiceXMLRenderer interface {
	RenderInvoiceXML(doc *Document) ([]byte, error)
}
