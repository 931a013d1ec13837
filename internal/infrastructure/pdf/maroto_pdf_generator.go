// Package pdf genera la factura imprimible de una boutique.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Entreprise + SIRET  │  N° Facture + Date            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÉMETTEUR: Boutique / Adresse / Tel / Email                  │
//	│  DESTINATAIRE: Client o partenaire                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Qté | Désignation | P.U. | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total / Payé / Reste à payer                       │
//	│  VERSEMENTS                                                  │
//	│  FOOTER: QR (número + total) + estado                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 120, Green: 40, Blue: 90}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	currency string
}

// NewMarotoPDFGenerator construye el generador. currency vacío = EUR.
func NewMarotoPDFGenerator(currency string) *MarotoPDFGenerator {
	if currency == "" {
		currency = "EUR"
	}
	return &MarotoPDFGenerator{currency: currency}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc *appbilling.Document) ([]byte, error) {
	if doc == nil || doc.Invoice == nil {
		return nil, fmt.Errorf("pdf: documento vacío")
	}
	tenantName := "-"
	if doc.Tenant != nil {
		tenantName = doc.Tenant.Name
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture "+doc.Invoice.Number, true).
		WithAuthor(tenantName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(doc))
	m.AddRows(recipientRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc))
	if len(doc.Payments) > 0 {
		m.AddRows(g.paymentRows(doc.Payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(doc *appbilling.Document) core.Row {
	name, taxID := "-", ""
	if doc.Tenant != nil {
		name = doc.Tenant.Name
		if doc.Tenant.TaxID != "" {
			taxID = "SIRET : " + doc.Tenant.TaxID
		}
	}
	title := "FACTURE"
	if doc.Invoice.Kind == entity.InvoiceKindPartner {
		title = "FACTURE PARTENAIRE"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(taxID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(doc.Invoice.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Date : "+doc.Invoice.CreatedAt.Format("02/01/2006"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func issuerRow(doc *appbilling.Document) core.Row {
	var parts []string
	if w := doc.Warehouse; w != nil {
		parts = append(parts, "Boutique : "+w.Name, nonEmpty(joinNonEmpty(", ", w.Address, w.City), "-"))
		if w.Phone != "" {
			parts = append(parts, "Tél : "+w.Phone)
		}
	}
	if t := doc.Tenant; t != nil && t.Email != "" {
		parts = append(parts, "Email : "+t.Email)
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ÉMETTEUR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func recipientRow(doc *appbilling.Document) core.Row {
	label := "CLIENT"
	if doc.Invoice.Kind == entity.InvoiceKindPartner {
		label = "PARTENAIRE"
	}
	c := col.New(12).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}))
	if p := doc.Party; p != nil {
		c.Add(
			text.New(p.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("N° TVA : %s   |   Email : %s   |   Tél : %s",
				nonEmpty(p.TaxID, "-"), nonEmpty(p.Email, "-"), nonEmpty(p.Phone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	} else {
		c.Add(text.New("Client comptoir", props.Text{Size: 10, Top: 6}))
	}
	return row.New(14).Add(c)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qté", 1, align.Center),
		h("Désignation", 6, align.Left),
		h("P.U.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows una fila por línea; el precio ajustado lleva su justificación debajo.
func (g *MarotoPDFGenerator) tableDetailRows(lines []appbilling.DocumentLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		label := l.ProductName
		if l.SKU != "" {
			label += " (" + l.SKU + ")"
		}
		height := 7.0
		desc := col.New(6).Add(text.New(label, props.Text{Size: 8, Top: 1, Left: 1}))
		if l.PriceJustification != "" && !l.UnitPrice.Equal(l.OriginalUnitPrice) {
			height = 11
			desc.Add(text.New(fmt.Sprintf("Prix catalogue %s : %s", g.money(l.OriginalUnitPrice), l.PriceJustification),
				props.Text{Size: 6.5, Top: 6, Left: 2, Color: colorGray}))
		}
		out = append(out, row.New(height).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Qty), props.Text{Size: 8, Align: align.Center, Top: 1})),
			desc,
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(l.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func (g *MarotoPDFGenerator) totalsRow(doc *appbilling.Document) core.Row {
	inv := doc.Invoice
	paid := inv.Total.Sub(inv.Outstanding)
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Total :", 1),
			label("Payé :", 7),
			text.New("Reste à payer :", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13}),
		),
		col.New(3).Add(
			value(g.money(inv.Total), 1),
			value(g.money(paid), 7),
			text.New(g.money(inv.Outstanding), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13}),
		),
	)
}

func (g *MarotoPDFGenerator) paymentRows(payments []*entity.Payment) []core.Row {
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("VERSEMENTS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(p.At.Format("02/01/2006 15:04"), props.Text{Size: 8, Color: colorGray, Left: 2})),
			col.New(4).Add(text.New(nonEmpty(p.Method, "-"), props.Text{Size: 8, Color: colorGray})),
			col.New(4).Add(text.New(g.money(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// footerRow QR con número y total para conciliación rápida en caja.
func (g *MarotoPDFGenerator) footerRow(doc *appbilling.Document) core.Row {
	inv := doc.Invoice
	qr := fmt.Sprintf("%s|%s|%s", inv.Number, inv.Total.StringFixed(2), inv.CreatedAt.Format("2006-01-02"))
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Statut : "+statusLabel(inv.Status), props.Text{Style: fontstyle.Bold, Size: 10, Top: 4, Left: 3, Color: colorPrimary}),
			text.New("Merci de votre confiance. Conservez cette facture comme justificatif.",
				props.Text{Size: 7, Top: 14, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(s string) string {
	switch s {
	case entity.InvoiceStatusPaid:
		return "payée"
	case entity.InvoiceStatusPartial:
		return "partiellement payée"
	case entity.InvoiceStatusCancelled:
		return "annulée"
	default:
		return "en attente"
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return FormatMoney(d) + " " + currencySymbol(g.currency)
}

func currencySymbol(c string) string {
	if c == "EUR" {
		return "€"
	}
	return c
}

// FormatMoney formato francés con dos decimales: 1234567.5 → "1 234 567,50".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
