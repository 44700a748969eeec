// Package ports define los puertos de salida hacia sistemas externos (órdenes, catálogo,
// directorio de usuarios, eventos y documentos). Las implementaciones viven en infrastructure.
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CatalogClient consulta productos en el catálogo. Sólo se usa para enriquecer respuestas.
type CatalogClient interface {
	BatchLookup(ctx context.Context, productIDs []string) ([]entity.Product, error)
}

// UserDirectory consulta nombres de operarios.
type UserDirectory interface {
	BatchLookup(ctx context.Context, userIDs []string) ([]entity.User, error)
}

// OrderLine línea de una orden de origen.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Order vista mínima de la orden del sistema de órdenes.
type Order struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Lines  []OrderLine `json:"lines"`
}

// PickedLine cantidad efectivamente preparada por producto, lote y ubicación.
type PickedLine struct {
	ProductID  string          `json:"product_id"`
	LotID      string          `json:"lot_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`

	// AdjustmentReason motivo del desvío cuando se pickeó un lote distinto al sugerido.
	AdjustmentReason string `json:"adjustment_reason,omitempty"`
}

// Estados que se informan al sistema de órdenes.
const (
	OrderStatusPreparing = "EN_PREPARACION"
	OrderStatusPrepared  = "PREPARADO"
)

// OrderClient operaciones del sistema de órdenes. El motor sólo usa ApplyPicking y PatchStatus;
// GetOrder queda para herramientas de operación.
type OrderClient interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ApplyPicking(ctx context.Context, orderID, pickingID string, lines []PickedLine) error
	PatchStatus(ctx context.Context, orderID, status string) error
}

// Tipos de notificación.
const (
	NotificationAssigned  = "picking.assigned"
	NotificationCompleted = "picking.completed"
)

// Notification aviso al sistema de órdenes tras un cambio de estado ya confirmado.
type Notification struct {
	Kind           string       `json:"kind"`
	PickingOrderID string       `json:"picking_order_id"`
	SourceOrderID  string       `json:"source_order_id"`
	WorkerID       string       `json:"worker_id,omitempty"`
	Lines          []PickedLine `json:"lines,omitempty"`
	Attempts       int          `json:"attempts,omitempty"`
}

// Notifier entrega notificaciones. Un error no revierte la transición que la originó.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// MovementPublisher publica movimientos de kárdex ya confirmados.
type MovementPublisher interface {
	Publish(ctx context.Context, entries []*entity.KardexEntry) error
}

// PickListLine línea imprimible de la hoja de picking.
type PickListLine struct {
	SKU          string
	ProductName  string
	Unit         string
	LotNumber    string
	ExpiresAt    string
	LocationCode string
	Requested    decimal.Decimal
	Picked       decimal.Decimal
	LineState    string
}

// PickListDocument datos de la hoja de picking.
type PickListDocument struct {
	PickingOrderID string
	SourceOrderID  string
	State          string
	Priority       int
	WorkerName     string
	GeneratedAt    string
	Lines          []PickListLine
}

// PickListGenerator genera el PDF de la hoja de picking.
type PickListGenerator interface {
	Generate(doc PickListDocument) ([]byte, error)
}
