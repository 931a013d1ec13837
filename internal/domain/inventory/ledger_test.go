package inventory_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
)

func TestKindFor(t *testing.T) {
	assert.Equal(t, entity.MovementIn, inventory.KindFor(5, ""))
	assert.Equal(t, entity.MovementOut, inventory.KindFor(-5, "venta"))
	assert.Equal(t, entity.MovementLoss, inventory.KindFor(-1, "Loss"))
	assert.Equal(t, entity.MovementReturn, inventory.KindFor(2, "return"))
	assert.Equal(t, entity.MovementAdjust, inventory.KindFor(-3, "adjust"))
}

func TestApply(t *testing.T) {
	row := entity.StockRow{Quantity: 10, Reserved: 4}

	got, err := inventory.Apply(row, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(13), got.Quantity)
	assert.Equal(t, int64(10), row.Quantity, "Apply no debe mutar la fila original")

	got, err = inventory.Apply(row, -6)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Quantity)

	// 7 > disponible (6) aunque quantity alcance
	_, err = inventory.Apply(row, -7)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = inventory.Apply(row, -11)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestReserveRelease_RestauraEstado(t *testing.T) {
	row := entity.StockRow{Quantity: 10, Reserved: 1}

	reserved, err := inventory.Reserve(row, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), reserved.Reserved)
	require.NoError(t, inventory.CheckRow(reserved))

	released, err := inventory.Release(reserved, 5)
	require.NoError(t, err)
	assert.Equal(t, row, released)

	_, err = inventory.Reserve(row, 10)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = inventory.Release(row, 2)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestLockOrder_AscendenteSinDuplicados(t *testing.T) {
	got := inventory.LockOrder([]inventory.Cell{
		{WarehouseID: 2, ProductID: 1},
		{WarehouseID: 1, ProductID: 9},
		{WarehouseID: 1, ProductID: 3},
		{WarehouseID: 2, ProductID: 1},
	})
	assert.Equal(t, []inventory.Cell{
		{WarehouseID: 1, ProductID: 3},
		{WarehouseID: 1, ProductID: 9},
		{WarehouseID: 2, ProductID: 1},
	}, got)
}

func TestAlertLevel(t *testing.T) {
	assert.Equal(t, inventory.AlertOut, inventory.AlertLevel(entity.StockRow{Quantity: 0}, 5))
	assert.Equal(t, inventory.AlertLow, inventory.AlertLevel(entity.StockRow{Quantity: 2}, 5))
	assert.Equal(t, inventory.AlertNone, inventory.AlertLevel(entity.StockRow{Quantity: 5}, 5))
	assert.Equal(t, inventory.AlertNone, inventory.AlertLevel(entity.StockRow{Quantity: 0}, 0))
}

func TestDocRefs(t *testing.T) {
	at := time.Date(2025, 10, 14, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, "TRF-Centre-Gare_Nord-20251014093005-A1B2C3", inventory.TransferDocRef("Centre", "Gare Nord", at, "A1B2C3"))
	assert.Equal(t, "INV-7-20251014093005-A1B2C3", inventory.InventoryDocRef(7, at, "A1B2C3"))
	assert.Equal(t, "INV-7-20251014093005", inventory.InventoryDocRef(7, at, ""))
}

func TestDocRefs_MismoSegundoSufijoDistinto(t *testing.T) {
	at := time.Date(2025, 10, 14, 9, 30, 5, 0, time.UTC)
	a := inventory.TransferDocRef("Centre", "Nord", at, "AAAAAA")
	b := inventory.TransferDocRef("Centre", "Nord", at, "BBBBBB")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, inventory.TransferPrefix))
}
