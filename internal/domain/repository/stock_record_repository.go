package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// StockRecordRepository puerto de los contadores por (ubicación, lote).
// Los métodos ForUpdate bloquean la fila (SELECT ... FOR UPDATE) y sólo tienen sentido dentro de una transacción.
type StockRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockRecord, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error)
	// GetByLocationLot devuelve nil, nil si no hay registro para la pareja.
	GetByLocationLot(ctx context.Context, locationID, lotID string) (*entity.StockRecord, error)
	GetByLocationLotForUpdate(ctx context.Context, locationID, lotID string) (*entity.StockRecord, error)
	// EnsureForUpdate crea el registro en cero si no existe y lo devuelve bloqueado.
	// created indica si la fila se insertó en esta llamada.
	EnsureForUpdate(ctx context.Context, locationID, lotID string) (rec *entity.StockRecord, created bool, err error)
	// ListCandidates devuelve registros del producto con disponible > 0, sin bloquear.
	ListCandidates(ctx context.Context, productID string) ([]entity.StockCandidate, error)
	ListByProduct(ctx context.Context, productID string) ([]entity.StockCandidate, error)
	Update(ctx context.Context, rec *entity.StockRecord) error
}
