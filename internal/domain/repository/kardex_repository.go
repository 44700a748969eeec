package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// KardexFilter criterios de consulta del kárdex. Campos vacíos no filtran.
type KardexFilter struct {
	ProductID    string
	LotID        string
	LocationID   string
	MovementType string
	From         *time.Time
	To           *time.Time
	Descending   bool
	Limit        int
	Offset       int
}

// KardexRepository puerto del libro de movimientos. Sólo agrega; nunca actualiza ni borra.
type KardexRepository interface {
	Append(ctx context.Context, e *entity.KardexEntry) error
	List(ctx context.Context, f KardexFilter) ([]*entity.KardexEntry, error)
	// ListForRecord devuelve los movimientos de un registro de stock en orden cronológico.
	ListForRecord(ctx context.Context, stockRecordID string) ([]*entity.KardexEntry, error)
}
