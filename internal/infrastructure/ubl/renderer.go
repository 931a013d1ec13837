// Package ubl serializa facturas como documentos UBL 2.1 (Invoice-2).
package ubl

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	customizationID = "urn:cen.eu:en16931:2017"
	// UNCL1001: 380 factura comercial.
	invoiceTypeCode = "380"
)

var _ appbilling.InvoiceXMLRenderer = (*Renderer)(nil)

// Renderer implementa billing.InvoiceXMLRenderer sobre etree.
type Renderer struct {
	currency string
}

// NewRenderer crea el renderer; currency vacío = EUR.
func NewRenderer(currency string) *Renderer {
	if currency == "" {
		currency = "EUR"
	}
	return &Renderer{currency: currency}
}

// RenderInvoiceXML genera el XML indentado con declaración.
func (r *Renderer) RenderInvoiceXML(doc *appbilling.Document) ([]byte, error) {
	if doc == nil || doc.Invoice == nil {
		return nil, fmt.Errorf("ubl: documento vacío")
	}
	inv := doc.Invoice

	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := x.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "CustomizationID", customizationID)
	cbc(root, "ID", inv.Number)
	cbc(root, "IssueDate", inv.CreatedAt.Format("2006-01-02"))
	cbc(root, "IssueTime", inv.CreatedAt.Format("15:04:05"))
	cbc(root, "InvoiceTypeCode", invoiceTypeCode)
	if inv.Notes != "" {
		cbc(root, "Note", inv.Notes)
	}
	cbc(root, "DocumentCurrencyCode", r.currency)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(doc.Lines)))

	r.supplier(root, doc)
	r.customer(root, doc)
	for _, p := range doc.Payments {
		pp := root.CreateElement("cac:PrepaidPayment")
		cbc(pp, "ID", strconv.FormatInt(p.ID, 10))
		r.amount(pp, "PaidAmount", p.Amount)
		cbc(pp, "PaidDate", p.At.Format("2006-01-02"))
		if p.Method != "" {
			cbc(pp, "InstructionID", p.Method)
		}
	}
	r.totals(root, inv)
	for i, l := range doc.Lines {
		r.line(root, i+1, l)
	}

	x.Indent(2)
	out, err := x.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	return out, nil
}

func (r *Renderer) supplier(root *etree.Element, doc *appbilling.Document) {
	party := root.CreateElement("cac:AccountingSupplierParty").CreateElement("cac:Party")
	t := doc.Tenant
	if t == nil {
		t = &entity.Tenant{ID: doc.Invoice.TenantID}
	}
	if t.TaxID != "" {
		id := party.CreateElement("cac:PartyIdentification")
		cbc(id, "ID", t.TaxID).CreateAttr("schemeID", "0002")
	}
	cbc(party.CreateElement("cac:PartyName"), "Name", t.Name)

	street, city := t.Address, t.City
	if w := doc.Warehouse; w != nil && w.Address != "" {
		street, city = w.Address, w.City
	}
	postal(party, street, city, t.Country)
	legal := party.CreateElement("cac:PartyLegalEntity")
	cbc(legal, "RegistrationName", t.Name)
	contact(party, t.Phone, t.Email)
}

func (r *Renderer) customer(root *etree.Element, doc *appbilling.Document) {
	p := doc.Party
	if p == nil {
		return
	}
	party := root.CreateElement("cac:AccountingCustomerParty").CreateElement("cac:Party")
	if p.TaxID != "" {
		cbc(party.CreateElement("cac:PartyIdentification"), "ID", p.TaxID)
	}
	cbc(party.CreateElement("cac:PartyName"), "Name", p.Name)
	if p.Address != "" {
		postal(party, p.Address, "", "")
	}
	cbc(party.CreateElement("cac:PartyLegalEntity"), "RegistrationName", p.Name)
	contact(party, p.Phone, p.Email)
}

// totals sin impuestos: los precios son TTC y el IVA no se desglosa.
func (r *Renderer) totals(root *etree.Element, inv *entity.Invoice) {
	lmt := root.CreateElement("cac:LegalMonetaryTotal")
	r.amount(lmt, "LineExtensionAmount", inv.Total)
	r.amount(lmt, "TaxExclusiveAmount", inv.Total)
	r.amount(lmt, "TaxInclusiveAmount", inv.Total)
	r.amount(lmt, "PrepaidAmount", inv.Total.Sub(inv.Outstanding))
	r.amount(lmt, "PayableAmount", inv.Outstanding)
}

func (r *Renderer) line(root *etree.Element, n int, l appbilling.DocumentLine) {
	el := root.CreateElement("cac:InvoiceLine")
	cbc(el, "ID", strconv.Itoa(n))
	cbc(el, "InvoicedQuantity", strconv.FormatInt(l.Qty, 10)).CreateAttr("unitCode", "C62")
	r.amount(el, "LineExtensionAmount", l.LineTotal)
	if l.PriceJustification != "" && !l.UnitPrice.Equal(l.OriginalUnitPrice) {
		cbc(el, "Note", l.PriceJustification)
	}
	item := el.CreateElement("cac:Item")
	cbc(item, "Name", l.ProductName)
	if l.SKU != "" {
		cbc(item.CreateElement("cac:SellersItemIdentification"), "ID", l.SKU)
	}
	r.amount(el.CreateElement("cac:Price"), "PriceAmount", l.UnitPrice)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func cbc(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + tag)
	el.SetText(value)
	return el
}

func (r *Renderer) amount(parent *etree.Element, tag string, d decimal.Decimal) {
	cbc(parent, tag, d.StringFixed(2)).CreateAttr("currencyID", r.currency)
}

func postal(party *etree.Element, street, city, country string) {
	addr := party.CreateElement("cac:PostalAddress")
	if street != "" {
		cbc(addr, "StreetName", street)
	}
	if city != "" {
		cbc(addr, "CityName", city)
	}
	if country != "" {
		cbc(addr.CreateElement("cac:Country"), "IdentificationCode", country)
	}
}

func contact(party *etree.Element, phone, email string) {
	if phone == "" && email == "" {
		return
	}
	c := party.CreateElement("cac:Contact")
	if phone != "" {
		cbc(c, "Telephone", phone)
	}
	if email != "" {
		cbc(c, "ElectronicMail", email)
	}
}
