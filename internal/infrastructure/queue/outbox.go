// Package queue entrega las notificaciones de picking de forma asíncrona a través de listas Redis:
// el motor encola (LPUSH) y un pool de workers consume (BRPOP), reintenta y envía a la cola de fallidos.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
)

// Claves de las listas.
const (
	QueueNotifications = "almacen:notifications"
	DLQPrefix          = "dlq:"
)

// Lists operaciones de lista que usa la cola. *redis.Client la cumple.
type Lists interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

var _ ports.Notifier = (*Outbox)(nil)

// Outbox implementa ports.Notifier encolando la notificación en Redis.
type Outbox struct {
	rdb   Lists
	queue string
}

// NewOutbox construye el notificador asíncrono.
func NewOutbox(rdb Lists) *Outbox {
	return &Outbox{rdb: rdb, queue: QueueNotifications}
}

// Notify encola n. El error sólo indica que no se pudo encolar.
func (o *Outbox) Notify(ctx context.Context, n ports.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("serializar notificación: %w", err)
	}
	if err := o.rdb.LPush(ctx, o.queue, data).Err(); err != nil {
		return fmt.Errorf("encolar notificación: %w", err)
	}
	return nil
}

// NewRedis abre el cliente a partir de una URL redis://.
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
