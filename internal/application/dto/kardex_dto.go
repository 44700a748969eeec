package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// KardexEntryResponse movimiento del kárdex.
type KardexEntryResponse struct {
	ID                    string           `json:"id"`
	OccurredAt            time.Time        `json:"occurred_at"`
	MovementType          string           `json:"movement_type"`
	DocumentType          string           `json:"document_type"`
	DocumentRef           string           `json:"document_ref"`
	ProductID             string           `json:"product_id"`
	LotID                 string           `json:"lot_id"`
	StockRecordID         string           `json:"stock_record_id"`
	OriginLocationID      *string          `json:"origin_location_id,omitempty"`
	DestinationLocationID *string          `json:"destination_location_id,omitempty"`
	Quantity              decimal.Decimal  `json:"quantity"`
	ResultingBalance      decimal.Decimal  `json:"resulting_balance"`
	UserID                string           `json:"user_id"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
}

// NewKardexEntryResponse convierte la entidad.
func NewKardexEntryResponse(e *entity.KardexEntry) KardexEntryResponse {
	return KardexEntryResponse{
		ID:                    e.ID,
		OccurredAt:            e.OccurredAt,
		MovementType:          e.MovementType,
		DocumentType:          e.DocumentType,
		DocumentRef:           e.DocumentRef,
		ProductID:             e.ProductID,
		LotID:                 e.LotID,
		StockRecordID:         e.StockRecordID,
		OriginLocationID:      e.OriginLocationID,
		DestinationLocationID: e.DestinationLocationID,
		Quantity:              e.Quantity,
		ResultingBalance:      e.ResultingBalance,
		UserID:                e.UserID,
		UnitCost:              e.UnitCost,
	}
}

// KardexListResponse página de movimientos.
type KardexListResponse struct {
	Items []KardexEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// KardexReplayResponse resultado de la reconstrucción de saldo.
type KardexReplayResponse struct {
	StockRecordID string          `json:"stock_record_id"`
	Recorded      decimal.Decimal `json:"recorded"`
	Replayed      decimal.Decimal `json:"replayed"`
	Entries       int             `json:"entries"`
	BrokenAt      string          `json:"broken_at,omitempty"`
	Consistent    bool            `json:"consistent"`
}
