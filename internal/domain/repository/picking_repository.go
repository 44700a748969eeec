package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// PickingFilter filtros de listado de órdenes de picking.
type PickingFilter struct {
	State            string
	AssignedTo       string
	IncludeCancelled bool
	Limit            int
	Offset           int
}

// PickingRepository puerto de órdenes de picking y sus líneas.
type PickingRepository interface {
	Create(ctx context.Context, o *entity.PickingOrder) error
	GetByID(ctx context.Context, id string) (*entity.PickingOrder, error)
	// GetForUpdate bloquea la orden (no sus líneas) y la devuelve con sus líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.PickingOrder, error)
	// GetBySourceOrder devuelve nil, nil si la orden de origen no tiene picking activo.
	GetBySourceOrder(ctx context.Context, sourceOrderID string) (*entity.PickingOrder, error)
	List(ctx context.Context, f PickingFilter) ([]*entity.PickingOrder, int, error)
	UpdateOrder(ctx context.Context, o *entity.PickingOrder) error
	CreateItem(ctx context.Context, item *entity.PickingItem) error
	UpdateItem(ctx context.Context, item *entity.PickingItem) error
}
