package stock_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/stock"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newRecord(physical, reserved int64) *entity.StockRecord {
	return &entity.StockRecord{ID: "s1", LocationID: "A", LotID: "L1", PhysicalQty: d(physical), ReservedQty: d(reserved)}
}

// Escenario: físico=100, reservar 30 y luego 80.
func TestReserve_EscenarioDisponible(t *testing.T) {
	rec := newRecord(100, 0)

	require.NoError(t, stock.Reserve(rec, d(30)))
	assert.True(t, rec.ReservedQty.Equal(d(30)))
	assert.True(t, rec.Available().Equal(d(70)))

	err := stock.Reserve(rec, d(80))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict), "stock insuficiente debe ser un conflicto")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, rec.ReservedQty.Equal(d(30)), "la reserva no cambia al fallar")
}

func TestRelease_NoQuedaNegativa(t *testing.T) {
	rec := newRecord(10, 4)

	released := stock.Release(rec, d(9))

	assert.True(t, released.Equal(d(4)))
	assert.True(t, rec.ReservedQty.IsZero())
	assert.True(t, stock.Release(rec, d(1)).IsZero(), "liberar de más es idempotente")
}

func TestApplyDelta(t *testing.T) {
	rec := newRecord(10, 6)

	require.NoError(t, stock.ApplyDelta(rec, d(5)))
	assert.True(t, rec.PhysicalQty.Equal(d(15)))

	err := stock.ApplyDelta(rec, d(-16))
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	err = stock.ApplyDelta(rec, d(-10))
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment, "no se puede dejar el físico por debajo de lo reservado")
	assert.True(t, rec.PhysicalQty.Equal(d(15)))

	assert.ErrorIs(t, stock.ApplyDelta(rec, decimal.Zero), domain.ErrInvalidInput)
}

func TestSettle_ConsumeReserva(t *testing.T) {
	rec := newRecord(20, 5)

	require.NoError(t, stock.Settle(rec, d(8)))
	assert.True(t, rec.PhysicalQty.Equal(d(12)))
	assert.True(t, rec.ReservedQty.IsZero())
	require.NoError(t, stock.CheckInvariant(rec))

	err := stock.Settle(rec, d(13))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestInvariante_TrasSecuencia(t *testing.T) {
	rec := newRecord(50, 0)
	ops := []func() error{
		func() error { return stock.Reserve(rec, d(20)) },
		func() error { return stock.Settle(rec, d(5)) },
		func() error { stock.Release(rec, d(3)); return nil },
		func() error { return stock.ApplyDelta(rec, d(-10)) },
		func() error { return stock.Reserve(rec, d(100)) },
		func() error { return stock.Settle(rec, d(30)) },
	}
	for _, op := range ops {
		_ = op()
		require.NoError(t, stock.CheckInvariant(rec))
	}
}
