package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreatePickingRequest creación de orden de picking. Con reservation_id, items debe ir vacío.
type CreatePickingRequest struct {
	SourceOrderID string                     `json:"source_order_id"`
	ReservationID string                     `json:"reservation_id,omitempty"`
	Priority      int                        `json:"priority"`
	Items         []CreatePickingItemRequest `json:"items"`
}

// CreatePickingItemRequest línea solicitada; stock_record_id fija el origen si tiene disponible.
type CreatePickingItemRequest struct {
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockRecordID string          `json:"stock_record_id,omitempty"`
}

// AssignPickingRequest asignación; vacío = el usuario del token.
type AssignPickingRequest struct {
	WorkerID string `json:"worker_id"`
}

// RecordPickRequest pick reportado por el operario.
type RecordPickRequest struct {
	Quantity            decimal.Decimal `json:"quantity"`
	ConfirmedLotID      string          `json:"confirmed_lot_id,omitempty"`
	ConfirmedLocationID string          `json:"confirmed_location_id,omitempty"`
	DeviationReason     string          `json:"deviation_reason,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

// PickingItemResponse línea de picking.
type PickingItemResponse struct {
	ID                     string          `json:"id"`
	ParentItemID           *string         `json:"parent_item_id,omitempty"`
	ProductID              string          `json:"product_id"`
	ProductName            string          `json:"product_name,omitempty"`
	SKU                    string          `json:"sku,omitempty"`
	RequestedQty           decimal.Decimal `json:"requested_qty"`
	ReservedQty            decimal.Decimal `json:"reserved_qty"`
	PickedQty              decimal.Decimal `json:"picked_qty"`
	SuggestedStockRecordID *string         `json:"suggested_stock_record_id,omitempty"`
	SuggestedLocationID    *string         `json:"suggested_location_id,omitempty"`
	SuggestedLocationCode  string          `json:"suggested_location_code,omitempty"`
	SuggestedLotID         *string         `json:"suggested_lot_id,omitempty"`
	SuggestedLotNumber     string          `json:"suggested_lot_number,omitempty"`
	ConfirmedLotID         *string         `json:"confirmed_lot_id,omitempty"`
	ConfirmedLocationID    *string         `json:"confirmed_location_id,omitempty"`
	LineState              string          `json:"line_state"`
	DeviationReason        string          `json:"deviation_reason,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
}

// PickingOrderResponse orden de picking con sus líneas.
type PickingOrderResponse struct {
	ID            string                `json:"id"`
	SourceOrderID string                `json:"source_order_id"`
	ReservationID *string               `json:"reservation_id,omitempty"`
	AssignedTo    *string               `json:"assigned_to,omitempty"`
	WorkerName    string                `json:"worker_name,omitempty"`
	Priority      int                   `json:"priority"`
	State         string                `json:"state"`
	Cancelled     bool                  `json:"cancelled"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	FinishedAt    *time.Time            `json:"finished_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Items         []PickingItemResponse `json:"items"`
}

// PickingListResponse página de órdenes.
type PickingListResponse struct {
	Items []PickingOrderResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// PickResultResponse resultado de un pick.
type PickResultResponse struct {
	Item    PickingItemResponse  `json:"item"`
	Sibling *PickingItemResponse `json:"sibling,omitempty"`
}

// SuggestionResponse sugerencia FEFO.
type SuggestionResponse struct {
	Found     bool                    `json:"found"`
	Candidate *StockCandidateResponse `json:"candidate,omitempty"`
}

// NewPickingItemResponse convierte la línea sin datos de catálogo.
func NewPickingItemResponse(it *entity.PickingItem) PickingItemResponse {
	return PickingItemResponse{
		ID:                     it.ID,
		ParentItemID:           it.ParentItemID,
		ProductID:              it.ProductID,
		RequestedQty:           it.RequestedQty,
		ReservedQty:            it.ReservedQty,
		PickedQty:              it.PickedQty,
		SuggestedStockRecordID: it.SuggestedStockRecordID,
		SuggestedLocationID:    it.SuggestedLocationID,
		SuggestedLotID:         it.SuggestedLotID,
		ConfirmedLotID:         it.ConfirmedLotID,
		ConfirmedLocationID:    it.ConfirmedLocationID,
		LineState:              it.LineState,
		DeviationReason:        it.DeviationReason,
		Notes:                  it.Notes,
	}
}

// NewPickingOrderResponse convierte la orden sin datos de catálogo.
func NewPickingOrderResponse(o *entity.PickingOrder) PickingOrderResponse {
	items := make([]PickingItemResponse, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, NewPickingItemResponse(&o.Items[i]))
	}
	return PickingOrderResponse{
		ID:            o.ID,
		SourceOrderID: o.SourceOrderID,
		ReservationID: o.ReservationID,
		AssignedTo:    o.AssignedTo,
		Priority:      o.Priority,
		State:         o.State,
		Cancelled:     o.Cancelled(),
		StartedAt:     o.StartedAt,
		FinishedAt:    o.FinishedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         items,
	}
}
