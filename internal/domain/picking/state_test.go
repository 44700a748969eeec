package picking_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/picking"
)

func newOrder() *entity.PickingOrder {
	return &entity.PickingOrder{ID: "po1", SourceOrderID: "o1", State: entity.PickingAssigned}
}

func TestCheckAssign(t *testing.T) {
	o := newOrder()
	changed, err := picking.CheckAssign(o, "w1")
	require.NoError(t, err)
	assert.True(t, changed)

	o.AssignedTo = strp("w1")
	changed, err = picking.CheckAssign(o, "w1")
	require.NoError(t, err)
	assert.False(t, changed, "misma asignación es idempotente")

	_, err = picking.CheckAssign(o, "w2")
	assert.True(t, errors.Is(err, domain.ErrAlreadyAssigned))

	o.State = entity.PickingCompleted
	_, err = picking.CheckAssign(o, "w1")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCheckStart(t *testing.T) {
	o := newOrder()
	o.AssignedTo = strp("w1")
	require.NoError(t, picking.CheckStart(o, "w1"))
	assert.True(t, errors.Is(picking.CheckStart(o, "w2"), domain.ErrAlreadyAssigned))

	o.State = entity.PickingInProgress
	assert.True(t, errors.Is(picking.CheckStart(o, "w1"), domain.ErrAlreadyStarted))

	o.State = entity.PickingCompleted
	assert.True(t, errors.Is(picking.CheckStart(o, "w1"), domain.ErrTerminalState))
}

func TestCheckComplete_LineaPendiente(t *testing.T) {
	o := newOrder()
	o.Items = []entity.PickingItem{{ID: "a", LineState: entity.LineCompleted}, {ID: "b", LineState: entity.LinePending}}
	err := picking.CheckComplete(o, "w1")
	assert.True(t, errors.Is(err, domain.ErrPendingItems))

	o.Items[1].LineState = entity.LinePartial
	assert.NoError(t, picking.CheckComplete(o, "w1"))

	o.AssignedTo = strp("w2")
	assert.True(t, errors.Is(picking.CheckComplete(o, "w1"), domain.ErrAlreadyAssigned))
}

func TestCheckCancel(t *testing.T) {
	o := newOrder()
	noop, err := picking.CheckCancel(o)
	require.NoError(t, err)
	assert.False(t, noop)

	now := time.Now()
	o.DeletedAt = &now
	noop, err = picking.CheckCancel(o)
	require.NoError(t, err)
	assert.True(t, noop)

	o.DeletedAt = nil
	o.State = entity.PickingCompleted
	_, err = picking.CheckCancel(o)
	assert.True(t, errors.Is(err, domain.ErrTerminalState))
}

func TestCheckRecordPick_Terminal(t *testing.T) {
	o := newOrder()
	require.NoError(t, picking.CheckRecordPick(o))
	o.State = entity.PickingCompleted
	assert.True(t, errors.Is(picking.CheckRecordPick(o), domain.ErrConflict))
}
