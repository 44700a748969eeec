package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateReservationRequest reserva todo-o-nada.
type CreateReservationRequest struct {
	ExternalRef string                   `json:"external_ref"`
	Items       []ReservationItemRequest `json:"items"`
}

// ReservationItemRequest línea a reservar.
type ReservationItemRequest struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ReservationResponse reserva con sus ítems.
type ReservationResponse struct {
	ID          string                    `json:"id"`
	ExternalRef string                    `json:"external_ref"`
	Status      string                    `json:"status"`
	Items       []ReservationItemResponse `json:"items"`
	CreatedAt   time.Time                 `json:"created_at"`
	CancelledAt *time.Time                `json:"cancelled_at,omitempty"`
	ConfirmedAt *time.Time                `json:"confirmed_at,omitempty"`
}

// ReservationItemResponse ítem reservado.
type ReservationItemResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockRecordID string          `json:"stock_record_id"`
}

// NewReservationResponse convierte la entidad.
func NewReservationResponse(r *entity.Reservation) ReservationResponse {
	items := make([]ReservationItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReservationItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Quantity:      it.Quantity,
			StockRecordID: it.StockRecordID,
		})
	}
	return ReservationResponse{
		ID:          r.ID,
		ExternalRef: r.ExternalRef,
		Status:      r.Status,
		Items:       items,
		CreatedAt:   r.CreatedAt,
		CancelledAt: r.CancelledAt,
		ConfirmedAt: r.ConfirmedAt,
	}
}
