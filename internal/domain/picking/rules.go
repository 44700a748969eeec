// Package picking contiene las reglas puras del motor de picking: sugerencia FEFO,
// máquina de estados de la orden y contabilidad de picks con cambio de lote.
package picking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// LineState calcula el estado de una línea a partir de lo pickeado y lo solicitado.
func LineState(picked, requested decimal.Decimal) string {
	switch {
	case picked.GreaterThanOrEqual(requested):
		return entity.LineCompleted
	case picked.IsZero():
		return entity.LinePending
	default:
		return entity.LinePartial
	}
}

// PickInput datos de un pick reportado por el operario.
type PickInput struct {
	Qty             decimal.Decimal
	ConfirmedLot    *entity.Lot // nil: mismo lote sugerido
	ConfirmedLocID  *string
	DeviationReason string
	Notes           string
}

// ApplyPick registra un pick sobre item.
//
// Si el lote confirmado difiere del sugerido se crea una línea hermana completada
// por qty y se descuenta qty de lo solicitado en la original; la suma de lo solicitado
// en la familia se conserva. En otro caso se acumula sobre la misma línea.
// newID genera el id de la línea hermana.
func ApplyPick(item *entity.PickingItem, in PickInput, now time.Time, newID func() string) (*entity.PickingItem, error) {
	if !in.Qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if in.ConfirmedLot != nil && in.ConfirmedLot.ProductID != item.ProductID {
		return nil, domain.ErrLotMismatch
	}

	if in.ConfirmedLot != nil && item.SuggestedLotID != nil && *item.SuggestedLotID != in.ConfirmedLot.ID {
		return split(item, in, now, newID)
	}

	next := item.PickedQty.Add(in.Qty)
	if next.GreaterThan(item.RequestedQty) {
		return nil, fmt.Errorf("%w: solicitado %s, pickeado %s", domain.ErrOverPick, item.RequestedQty, next)
	}
	item.PickedQty = next
	switch {
	case in.ConfirmedLot != nil:
		lotID := in.ConfirmedLot.ID
		item.ConfirmedLotID = &lotID
	case item.ConfirmedLotID == nil && item.SuggestedLotID != nil:
		lotID := *item.SuggestedLotID
		item.ConfirmedLotID = &lotID
	}
	if in.ConfirmedLocID != nil {
		loc := *in.ConfirmedLocID
		item.ConfirmedLocationID = &loc
	}
	if in.DeviationReason != "" {
		item.DeviationReason = in.DeviationReason
	}
	if in.Notes != "" {
		item.Notes = in.Notes
	}
	item.LineState = LineState(item.PickedQty, item.RequestedQty)
	item.UpdatedAt = now
	return nil, nil
}

func split(item *entity.PickingItem, in PickInput, now time.Time, newID func() string) (*entity.PickingItem, error) {
	if in.Qty.GreaterThan(item.RequestedQty) {
		return nil, fmt.Errorf("%w: solicitado %s, pickeado %s", domain.ErrOverPick, item.RequestedQty, in.Qty)
	}

	parentID := item.ID
	if item.ParentItemID != nil {
		parentID = *item.ParentItemID
	}
	lotID := in.ConfirmedLot.ID
	locID := item.SuggestedLocationID
	if in.ConfirmedLocID != nil {
		l := *in.ConfirmedLocID
		locID = &l
	} else if locID != nil {
		l := *locID
		locID = &l
	}
	sibling := &entity.PickingItem{
		ID:                  newID(),
		PickingOrderID:      item.PickingOrderID,
		ParentItemID:        &parentID,
		ProductID:           item.ProductID,
		RequestedQty:        in.Qty,
		ReservedQty:         decimal.Zero,
		PickedQty:           in.Qty,
		ConfirmedLotID:      &lotID,
		ConfirmedLocationID: locID,
		LineState:           entity.LineCompleted,
		DeviationReason:     in.DeviationReason,
		Notes:               in.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	item.RequestedQty = decimal.Max(decimal.Zero, item.RequestedQty.Sub(in.Qty))
	if item.PickedQty.GreaterThan(item.RequestedQty) {
		item.PickedQty = item.RequestedQty
	}
	item.LineState = LineState(item.PickedQty, item.RequestedQty)
	item.UpdatedAt = now
	return sibling, nil
}
