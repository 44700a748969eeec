package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Las variantes de conflicto envuelven ErrConflict: usar errors.Is(err, ErrConflict).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidAdjustment = errors.New("ajuste inválido: la cantidad física quedaría negativa")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrUnexpected        = errors.New("error inesperado")

	ErrInsufficientStock = fmt.Errorf("%w: stock insuficiente", ErrConflict)
	ErrDuplicatePicking  = fmt.Errorf("%w: la orden de origen ya tiene una orden de picking", ErrConflict)
	ErrAlreadyAssigned   = fmt.Errorf("%w: la orden está asignada a otro operario", ErrConflict)
	ErrAlreadyStarted    = fmt.Errorf("%w: la orden ya está en proceso", ErrConflict)
	ErrTerminalState     = fmt.Errorf("%w: la orden ya fue completada", ErrConflict)
	ErrPendingItems      = fmt.Errorf("%w: hay líneas pendientes de picking", ErrConflict)
	ErrLotMismatch       = fmt.Errorf("%w: el lote no corresponde al producto de la línea", ErrConflict)
	ErrOverPick          = fmt.Errorf("%w: la cantidad pickeada supera la solicitada", ErrConflict)
	ErrDuplicateLot      = fmt.Errorf("%w: el número de lote ya existe para el producto", ErrConflict)
)

// Unexpected envuelve un error de infraestructura con la operación que lo originó.
// Los errores de dominio pasan sin cambios.
func Unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrUnexpected, op, err)
}

// IsDomain indica si err pertenece a la taxonomía de dominio.
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidAdjustment) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrUnexpected)
}
