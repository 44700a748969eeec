// Package stock contiene las reglas puras del libro de existencias: cómo cambian
// los contadores físico y reservado de un StockRecord sin tocar persistencia.
package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Reserve compromete qty de lo disponible. Falla con ErrInsufficientStock si no alcanza.
func Reserve(rec *entity.StockRecord, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	if rec.Available().LessThan(qty) {
		return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, rec.Available(), qty)
	}
	rec.ReservedQty = rec.ReservedQty.Add(qty)
	return nil
}

// Release libera hasta qty de lo reservado; nunca deja la reserva negativa.
// Devuelve la cantidad efectivamente liberada.
func Release(rec *entity.StockRecord, qty decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() {
		return decimal.Zero
	}
	released := decimal.Min(qty, rec.ReservedQty)
	rec.ReservedQty = rec.ReservedQty.Sub(released)
	return released
}

// ApplyDelta aplica un ajuste físico. La cantidad física no puede quedar negativa
// ni por debajo de lo ya reservado.
func ApplyDelta(rec *entity.StockRecord, delta decimal.Decimal) error {
	if delta.IsZero() {
		return domain.ErrInvalidInput
	}
	next := rec.PhysicalQty.Add(delta)
	if next.IsNegative() {
		return fmt.Errorf("%w: físico %s, ajuste %s", domain.ErrInvalidAdjustment, rec.PhysicalQty, delta)
	}
	if next.LessThan(rec.ReservedQty) {
		return fmt.Errorf("%w: físico resultante %s menor que reservado %s", domain.ErrInvalidAdjustment, next, rec.ReservedQty)
	}
	rec.PhysicalQty = next
	return nil
}

// Settle descuenta qty del físico y consume min(qty, reservado) de la reserva.
func Settle(rec *entity.StockRecord, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	if rec.PhysicalQty.LessThan(qty) {
		return fmt.Errorf("%w: físico %s, salida %s", domain.ErrInsufficientStock, rec.PhysicalQty, qty)
	}
	rec.PhysicalQty = rec.PhysicalQty.Sub(qty)
	rec.ReservedQty = rec.ReservedQty.Sub(decimal.Min(qty, rec.ReservedQty))
	return nil
}

// CheckInvariant verifica 0 <= reservado <= físico.
func CheckInvariant(rec *entity.StockRecord) error {
	if rec.PhysicalQty.IsNegative() || rec.ReservedQty.IsNegative() || rec.ReservedQty.GreaterThan(rec.PhysicalQty) {
		return fmt.Errorf("%w: stock %s físico=%s reservado=%s", domain.ErrUnexpected, rec.ID, rec.PhysicalQty, rec.ReservedQty)
	}
	return nil
}
