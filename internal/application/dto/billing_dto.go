package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// CreateInvoiceRequest alta de factura. Kind customer exige customer; partner exige partner.
type CreateInvoiceRequest struct {
	WarehouseID int64                `json:"boutique" validate:"required,gt=0"`
	Kind        string               `json:"kind" validate:"omitempty,oneof=customer partner"`
	CustomerID  *int64               `json:"client"`
	PartnerID   *int64               `json:"partenaire"`
	Notes       string               `json:"notes" validate:"omitempty,max=1000"`
	DebitStock  bool                 `json:"debit_stock"`
	Lines       []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceLineRequest línea de factura.
type InvoiceLineRequest struct {
	ProductID          int64            `json:"produit" validate:"required,gt=0"`
	Qty                int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
	PriceJustification string           `json:"price_justification" validate:"omitempty,max=500"`
}

// RecordPaymentRequest alta de versement.
type RecordPaymentRequest struct {
	InvoiceID int64           `json:"facture" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"omitempty,max=30"`
}

// InvoiceResponse salida de una factura.
type InvoiceResponse struct {
	ID            int64                 `json:"id"`
	TenantID      string                `json:"entreprise"`
	WarehouseID   int64                 `json:"boutique"`
	Kind          string                `json:"kind"`
	Number        string                `json:"number"`
	CustomerID    *int64                `json:"client"`
	PartnerID     *int64                `json:"partenaire"`
	Total         decimal.Decimal       `json:"total"`
	Outstanding   decimal.Decimal       `json:"outstanding"`
	Status        string                `json:"status"`
	CreatorUserID int64                 `json:"created_by"`
	Notes         string                `json:"notes"`
	CreatedAt     time.Time             `json:"created_at"`
	Lines         []InvoiceLineResponse `json:"lines,omitempty"`
	Payments      []PaymentResponse     `json:"versements,omitempty"`
}

// InvoiceLineResponse salida de una línea.
type InvoiceLineResponse struct {
	ID                 int64           `json:"id"`
	ProductID          int64           `json:"produit"`
	Qty                int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	OriginalUnitPrice  decimal.Decimal `json:"original_unit_price"`
	PriceJustification string          `json:"price_justification,omitempty"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// PaymentResponse salida de un versement.
type PaymentResponse struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"facture"`
	WarehouseID int64           `json:"boutique"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	ActorUserID int64           `json:"created_by"`
	At          time.Time       `json:"at"`
}

// PaymentReceipt pago más el estado resultante de la factura.
type PaymentReceipt struct {
	Payment PaymentResponse `json:"versement"`
	Invoice InvoiceResponse `json:"facture"`
}

func InvoiceFromEntity(inv *entity.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID: inv.ID, TenantID: inv.TenantID, WarehouseID: inv.WarehouseID, Kind: inv.Kind, Number: inv.Number,
		CustomerID: inv.CustomerID, PartnerID: inv.PartnerID, Total: inv.Total, Outstanding: inv.Outstanding,
		Status: inv.Status, CreatorUserID: inv.CreatorUserID, Notes: inv.Notes, CreatedAt: inv.CreatedAt,
	}
}

func InvoiceLineFromEntity(l *entity.InvoiceLine) InvoiceLineResponse {
	return InvoiceLineResponse{
		ID: l.ID, ProductID: l.ProductID, Qty: l.Qty, UnitPrice: l.UnitPrice,
		OriginalUnitPrice: l.OriginalUnitPrice, PriceJustification: l.PriceJustification, LineTotal: l.LineTotal,
	}
}

func PaymentFromEntity(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID: p.ID, InvoiceID: p.InvoiceID, WarehouseID: p.WarehouseID, Amount: p.Amount,
		Method: p.Method, ActorUserID: p.ActorUserID, At: p.At,
	}
}
