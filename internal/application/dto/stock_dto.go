package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AdjustStockRequest ajuste físico (delta con signo) o devolución (delta positivo).
type AdjustStockRequest struct {
	LocationID  string           `json:"location_id"`
	LotID       string           `json:"lot_id"`
	Delta       decimal.Decimal  `json:"delta"`
	DocumentRef string           `json:"document_ref"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ReturnStockRequest reingreso por devolución.
type ReturnStockRequest struct {
	LocationID  string           `json:"location_id"`
	LotID       string           `json:"lot_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	DocumentRef string           `json:"document_ref"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ReserveStockRequest reserva o liberación puntual sobre (ubicación, lote).
type ReserveStockRequest struct {
	LocationID string          `json:"location_id"`
	LotID      string          `json:"lot_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// StockRecordResponse contadores de un registro.
type StockRecordResponse struct {
	ID          string          `json:"id"`
	LocationID  string          `json:"location_id"`
	LotID       string          `json:"lot_id"`
	PhysicalQty decimal.Decimal `json:"physical_qty"`
	ReservedQty decimal.Decimal `json:"reserved_qty"`
	Available   decimal.Decimal `json:"available"`
	LastEntryAt *time.Time      `json:"last_entry_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewStockRecordResponse convierte la entidad.
func NewStockRecordResponse(s *entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:          s.ID,
		LocationID:  s.LocationID,
		LotID:       s.LotID,
		PhysicalQty: s.PhysicalQty,
		ReservedQty: s.ReservedQty,
		Available:   s.Available(),
		LastEntryAt: s.LastEntryAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// StockCandidateResponse registro con datos de lote y ubicación.
type StockCandidateResponse struct {
	StockRecordResponse
	ProductID          string    `json:"product_id"`
	LotNumber          string    `json:"lot_number"`
	LotExpiresAt       time.Time `json:"lot_expires_at"`
	LotQualityStatus   string    `json:"lot_quality_status"`
	LocationQuarantine bool      `json:"location_quarantine"`
}

// NewStockCandidateResponse convierte la fila enriquecida.
func NewStockCandidateResponse(c *entity.StockCandidate) StockCandidateResponse {
	return StockCandidateResponse{
		StockRecordResponse: NewStockRecordResponse(&c.Record),
		ProductID:           c.ProductID,
		LotNumber:           c.LotNumber,
		LotExpiresAt:        c.LotExpiresAt,
		LotQualityStatus:    c.LotQualityStatus,
		LocationQuarantine:  c.LocationQuarantine,
	}
}
