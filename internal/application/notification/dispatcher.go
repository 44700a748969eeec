// Package notification traduce las notificaciones de picking a llamadas al sistema de órdenes.
package notification

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
)

var _ ports.Notifier = (*Dispatcher)(nil)

// Dispatcher entrega notificaciones directamente contra el OrderClient.
type Dispatcher struct {
	orders ports.OrderClient
}

// NewDispatcher construye el despachador.
func NewDispatcher(orders ports.OrderClient) *Dispatcher {
	return &Dispatcher{orders: orders}
}

// Notify asignación: EN_PREPARACION. Completado: aplica lo pickeado y marca PREPARADO.
func (d *Dispatcher) Notify(ctx context.Context, n ports.Notification) error {
	switch n.Kind {
	case ports.NotificationAssigned:
		return d.orders.PatchStatus(ctx, n.SourceOrderID, ports.OrderStatusPreparing)
	case ports.NotificationCompleted:
		if len(n.Lines) > 0 {
			if err := d.orders.ApplyPicking(ctx, n.SourceOrderID, n.PickingOrderID, n.Lines); err != nil {
				return fmt.Errorf("apply picking: %w", err)
			}
		}
		return d.orders.PatchStatus(ctx, n.SourceOrderID, ports.OrderStatusPrepared)
	default:
		return fmt.Errorf("tipo de notificación desconocido: %q", n.Kind)
	}
}
