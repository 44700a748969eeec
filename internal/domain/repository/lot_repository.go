package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// LotRepository puerto de persistencia del registro de lotes.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// FindByNumber busca por (producto, número de lote). Devuelve nil, nil si no existe.
	FindByNumber(ctx context.Context, productID, lotNumber string) (*entity.Lot, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	UpdateQualityStatus(ctx context.Context, id, status string) error
}

// LocationRepository puerto de lectura de ubicaciones.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, warehouseID, code string) (*entity.Location, error)
	Create(ctx context.Context, loc *entity.Location) error
}
