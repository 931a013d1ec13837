package ubl_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/Boutique-api/internal/application/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/ubl"
)

func sampleDocument() *appbilling.Document {
	at := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return &appbilling.Document{
		Invoice: &entity.Invoice{
			ID: 1, TenantID: "ENT0000001", WarehouseID: 3, Number: "FAC-3-202603-00007",
			Kind: entity.InvoiceKindCustomer, Status: entity.InvoiceStatusPartial,
			Total: decimal.RequireFromString("150.00"), Outstanding: decimal.RequireFromString("50.00"),
			CreatedAt: at,
		},
		Tenant:    &entity.Tenant{ID: "ENT0000001", Name: "Maison Lila", TaxID: "12345678900011", Country: "FR", Email: "contact@lila.fr"},
		Warehouse: &entity.Warehouse{ID: 3, Name: "Lila Lyon", Address: "3 rue Mercière", City: "Lyon"},
		Party:     &entity.Party{ID: 9, Kind: "customer", Name: "Claire Martin", Email: "claire@example.fr"},
		Lines: []appbilling.DocumentLine{
			{
				InvoiceLine: entity.InvoiceLine{
					ProductID: 5, Qty: 2,
					UnitPrice: decimal.RequireFromString("75.00"), OriginalUnitPrice: decimal.RequireFromString("80.00"),
					PriceJustification: "remise fidélité", LineTotal: decimal.RequireFromString("150.00"),
				},
				SKU: "ROBE-01", ProductName: "Robe lin",
			},
		},
		Payments: []*entity.Payment{{ID: 4, Amount: decimal.RequireFromString("100.00"), Method: "carte", At: at}},
	}
}

// ─── RenderInvoiceXML ────────────────────────────────────────────────────────

func TestRenderInvoiceXML_EstructuraUBL(t *testing.T) {
	out, err := ubl.NewRenderer("").RenderInvoiceXML(sampleDocument())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Invoice", root.Tag)
	assert.Equal(t, ubl.NsInvoice, root.SelectAttrValue("xmlns", ""))

	assert.Equal(t, "FAC-3-202603-00007", root.FindElement("./cbc:ID").Text())
	assert.Equal(t, "2026-03-14", root.FindElement("./cbc:IssueDate").Text())
	assert.Equal(t, "EUR", root.FindElement("./cbc:DocumentCurrencyCode").Text())

	payable := root.FindElement("./cac:LegalMonetaryTotal/cbc:PayableAmount")
	require.NotNil(t, payable)
	assert.Equal(t, "50.00", payable.Text())
	assert.Equal(t, "EUR", payable.SelectAttrValue("currencyID", ""))
	assert.Equal(t, "100.00", root.FindElement("./cac:LegalMonetaryTotal/cbc:PrepaidAmount").Text())

	lines := root.FindElements("./cac:InvoiceLine")
	require.Len(t, lines, 1)
	assert.Equal(t, "2", lines[0].FindElement("./cbc:InvoicedQuantity").Text())
	assert.Equal(t, "remise fidélité", lines[0].FindElement("./cbc:Note").Text())
	assert.Equal(t, "ROBE-01", lines[0].FindElement("./cac:Item/cac:SellersItemIdentification/cbc:ID").Text())

	assert.Equal(t, "Claire Martin",
		root.FindElement("./cac:AccountingCustomerParty/cac:Party/cac:PartyName/cbc:Name").Text())
	assert.Equal(t, "3 rue Mercière",
		root.FindElement("./cac:AccountingSupplierParty/cac:Party/cac:PostalAddress/cbc:StreetName").Text())
}

func TestRenderInvoiceXML_SinClienteOmiteCustomerParty(t *testing.T) {
	d := sampleDocument()
	d.Party = nil
	d.Lines[0].PriceJustification = ""
	out, err := ubl.NewRenderer("EUR").RenderInvoiceXML(d)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Nil(t, doc.Root().FindElement("./cac:AccountingCustomerParty"))
	assert.Nil(t, doc.Root().FindElement("./cac:InvoiceLine/cbc:Note"))
}

func TestRenderInvoiceXML_DocumentoVacio(t *testing.T) {
	_, err := ubl.NewRenderer("").RenderInvoiceXML(&appbilling.Document{})
	assert.Error(t, err)
}
