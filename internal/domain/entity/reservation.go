package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationActive    = "ACTIVE"
	ReservationCancelled = "CANCELLED"
	ReservationConfirmed = "CONFIRMED"
)

// Reservation pre-asignación de stock para una demanda antes de que exista la orden de picking.
type Reservation struct {
	ID          string
	ExternalRef string
	Status      string
	Items       []ReservationItem
	CreatedAt   time.Time
	CancelledAt *time.Time
	ConfirmedAt *time.Time
}

// ReservationItem línea reservada contra un StockRecord concreto.
type ReservationItem struct {
	ID            string
	ReservationID string
	ProductID     string
	SKU           string
	Quantity      decimal.Decimal
	StockRecordID string
}
