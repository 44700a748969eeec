// Package events publica en Kafka los movimientos de kárdex ya confirmados.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// MessageWriter subconjunto de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ ports.MovementPublisher = (*KafkaPublisher)(nil)

// MovementEvent mensaje publicado por movimiento. La llave es el StockRecordID para conservar el orden por registro.
type MovementEvent struct {
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

// KafkaPublisher implementa ports.MovementPublisher.
type KafkaPublisher struct {
	w MessageWriter
}

// NewKafkaWriter construye el writer para el tópico de movimientos.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

// NewKafkaPublisher envuelve un writer.
func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// Publish escribe un mensaje por movimiento con el contexto de traza en los headers.
func (p *KafkaPublisher) Publish(ctx context.Context, entries []*entity.KardexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafka.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msgs := make([]kafka.Message, 0, len(entries))
	for _, e := range entries {
		body, err := json.Marshal(toEvent(e))
		if err != nil {
			return fmt.Errorf("serializar movimiento %s: %w", e.ID, err)
		}
		h := make([]kafka.Header, len(headers), len(headers)+1)
		copy(h, headers)
		msgs = append(msgs, kafka.Message{
			Key:     []byte(e.StockRecordID),
			Value:   body,
			Headers: append(h, kafka.Header{Key: "movement_type", Value: []byte(e.MovementType)}),
		})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publicar movimientos: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func toEvent(e *entity.KardexEntry) MovementEvent {
	return MovementEvent{
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
