package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

func TestFormatNumber(t *testing.T) {
	at := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "FA7-251014-0013", billing.FormatNumber(7, at, 13))
	assert.Equal(t, "FA7-251014-9999", billing.FormatNumber(7, at, 9999))
	// los dígitos crecen, nunca se truncan
	assert.Equal(t, "FA7-251014-10000", billing.FormatNumber(7, at, 10000))
}

func TestStatus(t *testing.T) {
	d := decimal.NewFromInt
	assert.Equal(t, entity.InvoiceStatusPending, billing.Status(d(100), d(100), false))
	assert.Equal(t, entity.InvoiceStatusPartial, billing.Status(d(100), d(30), false))
	assert.Equal(t, entity.InvoiceStatusPaid, billing.Status(d(100), d(0), false))
	assert.Equal(t, entity.InvoiceStatusCancelled, billing.Status(d(100), d(100), true))
}

func TestApplyPayment_ParcialYCompleto(t *testing.T) {
	d := decimal.NewFromInt
	inv := &entity.Invoice{Total: d(10000), Outstanding: d(10000), Status: entity.InvoiceStatusPending}

	out, st, err := billing.ApplyPayment(inv, d(3000))
	require.NoError(t, err)
	assert.True(t, out.Equal(d(7000)))
	assert.Equal(t, entity.InvoiceStatusPartial, st)

	inv.Outstanding, inv.Status = out, st
	out, st, err = billing.ApplyPayment(inv, d(7000))
	require.NoError(t, err)
	assert.True(t, out.IsZero())
	assert.Equal(t, entity.InvoiceStatusPaid, st)

	inv.Outstanding, inv.Status = out, st
	_, _, err = billing.ApplyPayment(inv, d(1))
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestApplyPayment_Cancelada(t *testing.T) {
	inv := &entity.Invoice{Total: decimal.NewFromInt(10), Outstanding: decimal.NewFromInt(10), Status: entity.InvoiceStatusCancelled}
	_, _, err := billing.ApplyPayment(inv, decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestValidateLine(t *testing.T) {
	d := decimal.NewFromInt
	base := billing.LineInput{Qty: 2, UnitPrice: d(150), PurchasePrice: d(100), SalePrice: d(150)}
	require.NoError(t, billing.ValidateLine("lines[0]", base))

	below := base
	below.UnitPrice, below.Justification = d(90), "promo"
	err := billing.ValidateLine("lines[0]", below)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, domain.DetailsOf(err), "lines[0].unit_price")

	changed := base
	changed.UnitPrice = d(120)
	err = billing.ValidateLine("lines[0]", changed)
	assert.Contains(t, domain.DetailsOf(err), "lines[0].price_justification")

	changed.Justification = "cliente fiel"
	assert.NoError(t, billing.ValidateLine("lines[0]", changed))

	assert.True(t, billing.LineTotal(3, d(25)).Equal(d(75)))
}
