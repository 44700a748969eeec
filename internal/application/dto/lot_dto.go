package dto

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// RegisterLotRequest alta de un lote recibido.
type RegisterLotRequest struct {
	ProductID      string     `json:"product_id"`
	LotNumber      string     `json:"lot_number"`
	ManufacturedAt *time.Time `json:"manufactured_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	QualityStatus  string     `json:"quality_status,omitempty"`
}

// UpdateQualityRequest cambio de estado de calidad.
type UpdateQualityRequest struct {
	QualityStatus string `json:"quality_status"`
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	LotNumber      string     `json:"lot_number"`
	ManufacturedAt *time.Time `json:"manufactured_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	QualityStatus  string     `json:"quality_status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewLotResponse convierte la entidad.
func NewLotResponse(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:             l.ID,
		ProductID:      l.ProductID,
		LotNumber:      l.LotNumber,
		ManufacturedAt: l.ManufacturedAt,
		ExpiresAt:      l.ExpiresAt,
		QualityStatus:  l.QualityStatus,
		CreatedAt:      l.CreatedAt,
	}
}
