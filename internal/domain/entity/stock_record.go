package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord contadores de existencia por (ubicación, lote).
// Invariante: 0 <= ReservedQty <= PhysicalQty. Nunca se borra (las filas en cero se conservan).
type StockRecord struct {
	ID          string
	LocationID  string
	LotID       string
	PhysicalQty decimal.Decimal
	ReservedQty decimal.Decimal
	LastEntryAt *time.Time
	UpdatedAt   time.Time
}

// Available cantidad física no comprometida.
func (s *StockRecord) Available() decimal.Decimal {
	return s.PhysicalQty.Sub(s.ReservedQty)
}

// StockCandidate fila de stock enriquecida con los datos de lote y ubicación
// que usan la sugerencia FEFO y la reserva.
type StockCandidate struct {
	Record             StockRecord
	ProductID          string
	LotNumber          string
	LotExpiresAt       time.Time
	LotQualityStatus   string
	LocationQuarantine bool
}
