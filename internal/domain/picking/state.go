package picking

import (
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Transiciones de la orden de picking:
//
//	ASIGNADO ──start──▶ EN_PROCESO ──complete──▶ COMPLETADO
//	    └────────────────complete──────────────────┘
//
// cancel es un borrado lógico permitido desde cualquier estado no terminal.

// CheckAssign valida una asignación. changed=false cuando ya estaba asignada al mismo operario.
func CheckAssign(o *entity.PickingOrder, workerID string) (changed bool, err error) {
	if workerID == "" {
		return false, domain.ErrInvalidInput
	}
	if o.Cancelled() {
		return false, domain.ErrNotFound
	}
	if o.State == entity.PickingCompleted {
		return false, domain.ErrTerminalState
	}
	if o.AssignedTo != nil {
		if *o.AssignedTo != workerID {
			return false, domain.ErrAlreadyAssigned
		}
		return false, nil
	}
	return true, nil
}

// CheckStart valida el inicio del picking por workerID.
func CheckStart(o *entity.PickingOrder, workerID string) error {
	if workerID == "" {
		return domain.ErrInvalidInput
	}
	if o.Cancelled() {
		return domain.ErrNotFound
	}
	if o.AssignedTo != nil && *o.AssignedTo != workerID {
		return domain.ErrAlreadyAssigned
	}
	switch o.State {
	case entity.PickingInProgress:
		return domain.ErrAlreadyStarted
	case entity.PickingCompleted:
		return domain.ErrTerminalState
	}
	return nil
}

// CheckRecordPick valida que la orden admita picks.
func CheckRecordPick(o *entity.PickingOrder) error {
	if o.Cancelled() {
		return domain.ErrNotFound
	}
	if o.State == entity.PickingCompleted {
		return domain.ErrTerminalState
	}
	return nil
}

// CheckComplete valida el cierre: mismo operario, no terminal y ninguna línea PENDIENTE.
func CheckComplete(o *entity.PickingOrder, workerID string) error {
	if workerID == "" {
		return domain.ErrInvalidInput
	}
	if o.Cancelled() {
		return domain.ErrNotFound
	}
	if o.AssignedTo != nil && *o.AssignedTo != workerID {
		return domain.ErrAlreadyAssigned
	}
	if o.State == entity.PickingCompleted {
		return domain.ErrTerminalState
	}
	for i := range o.Items {
		if o.Items[i].LineState == entity.LinePending {
			return domain.ErrPendingItems
		}
	}
	return nil
}

// CheckCancel valida la cancelación. noop=true si ya estaba cancelada.
func CheckCancel(o *entity.PickingOrder) (noop bool, err error) {
	if o.Cancelled() {
		return true, nil
	}
	if o.State == entity.PickingCompleted {
		return false, domain.ErrTerminalState
	}
	return false, nil
}
