package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/events"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaPublisher_UnMensajePorMovimiento(t *testing.T) {
	w := &captureWriter{}
	p := events.NewKafkaPublisher(w)
	loc := "A"
	entries := []*entity.KardexEntry{
		{ID: "k1", OccurredAt: time.Now(), MovementType: entity.MovementPickingOut, StockRecordID: "s1",
			OriginLocationID: &loc, Quantity: decimal.NewFromInt(4), ResultingBalance: decimal.NewFromInt(96)},
		{ID: "k2", OccurredAt: time.Now(), MovementType: entity.MovementPickingOut, StockRecordID: "s2",
			OriginLocationID: &loc, Quantity: decimal.NewFromInt(2), ResultingBalance: decimal.NewFromInt(98)},
	}
	require.NoError(t, p.Publish(context.Background(), entries))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "s1", string(w.msgs[0].Key))
	var ev events.MovementEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &ev))
	assert.Equal(t, "k2", ev.ID)
	assert.True(t, decimal.NewFromInt(98).Equal(ev.ResultingBalance))
	assert.Nil(t, ev.DestinationLocationID)
}

func TestKafkaPublisher_SinMovimientosNoEscribe(t *testing.T) {
	w := &captureWriter{err: errors.New("no debería llamarse")}
	require.NoError(t, events.NewKafkaPublisher(w).Publish(context.Background(), nil))
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_PropagaError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker caído")}
	err := events.NewKafkaPublisher(w).Publish(context.Background(), []*entity.KardexEntry{{ID: "k1", StockRecordID: "s1"}})
	assert.ErrorContains(t, err, "broker caído")
}
