package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de picking.
const (
	PickingAssigned   = "ASIGNADO"
	PickingInProgress = "EN_PROCESO"
	PickingCompleted  = "COMPLETADO"
)

// Estados de línea.
const (
	LinePending   = "PENDIENTE"
	LinePartial   = "PARCIAL"
	LineCompleted = "COMPLETADO"
)

// PickingOrder orden de preparación asociada 1:1 a una orden de origen.
// La cancelación es un borrado lógico (DeletedAt).
type PickingOrder struct {
	ID            string
	SourceOrderID string
	ReservationID *string
	AssignedTo    *string
	Priority      int
	State         string
	StartedAt     *time.Time
	FinishedAt    *time.Time
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []PickingItem
}

// Cancelled indica si la orden fue cancelada.
func (o *PickingOrder) Cancelled() bool {
	return o.DeletedAt != nil
}

// PickingItem línea de picking. Las líneas hermanas creadas por cambio de lote
// llevan ParentItemID apuntando a la línea original.
type PickingItem struct {
	ID                     string
	PickingOrderID         string
	ParentItemID           *string
	ProductID              string
	RequestedQty           decimal.Decimal
	SuggestedStockRecordID *string
	SuggestedLocationID    *string
	SuggestedLotID         *string
	ReservedQty            decimal.Decimal
	PickedQty              decimal.Decimal
	ConfirmedLotID         *string
	ConfirmedLocationID    *string
	LineState              string
	DeviationReason        string
	Notes                  string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// SourceLotID lote a liquidar: el confirmado o, en su defecto, el sugerido.
func (i *PickingItem) SourceLotID() *string {
	if i.ConfirmedLotID != nil {
		return i.ConfirmedLotID
	}
	return i.SuggestedLotID
}

// SourceLocationID ubicación a liquidar: la confirmada o, en su defecto, la sugerida.
func (i *PickingItem) SourceLocationID() *string {
	if i.ConfirmedLocationID != nil {
		return i.ConfirmedLocationID
	}
	return i.SuggestedLocationID
}
