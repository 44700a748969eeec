package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/jhoicas/Almacen-api/pkg/metrics"
)

const (
	popTimeout   = 5 * time.Second
	errorBackoff = time.Second
)

// DLQEntry notificación que agotó sus reintentos.
type DLQEntry struct {
	OriginalQueue string             `json:"original_queue"`
	Notification  ports.Notification `json:"notification"`
	Reason        string             `json:"reason"`
	FailedAt      string             `json:"failed_at"`
	Attempts      int                `json:"attempts"`
}

// Worker consume la cola y entrega cada notificación al destino (normalmente notification.Dispatcher).
type Worker struct {
	rdb         Lists
	target      ports.Notifier
	queue       string
	maxAttempts int
	log         *logger.Logger
	now         func() time.Time
}

// NewWorker construye el consumidor. maxAttempts <= 0 equivale a 5.
func NewWorker(rdb Lists, target ports.Notifier, maxAttempts int, log *logger.Logger) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Worker{
		rdb:         rdb,
		target:      target,
		queue:       QueueNotifications,
		maxAttempts: maxAttempts,
		log:         log.Component("notify-worker"),
		now:         time.Now,
	}
}

// Start lanza n goroutines que bloquean en BRPOP hasta que ctx termina. Wait espera su salida.
func (w *Worker) Start(ctx context.Context, n int) *sync.WaitGroup {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.run(ctx, id)
		}(i)
	}
	w.log.Info().Int("workers", n).Msg("pool de notificaciones iniciado")
	return &wg
}

func (w *Worker) run(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			w.log.Debug().Int("worker", id).Msg("worker detenido")
			return
		}
		res, err := w.rdb.BRPop(ctx, popTimeout, w.queue).Result()
		switch {
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			continue
		case err != nil:
			// Redis caído: no girar en vacío mientras se recupera.
			w.log.Warn().Err(err).Int("worker", id).Str("queue", w.queue).Msg("fallo al leer la cola; reintentando")
			select {
			case <-ctx.Done():
			case <-time.After(errorBackoff):
			}
			continue
		case len(res) < 2:
			continue
		}
		w.Process(ctx, res[1])
	}
}

// Process entrega una notificación serializada. Si falla la reencola con Attempts+1
// o, agotados los intentos, la mueve a la cola de fallidos.
func (w *Worker) Process(ctx context.Context, raw string) {
	var n ports.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		w.log.Error().Err(err).Str("queue", w.queue).Msg("notificación ilegible")
		return
	}
	err := w.target.Notify(ctx, n)
	if err == nil {
		return
	}
	n.Attempts++
	metrics.NotificationsFailed.WithLabelValues(n.Kind).Inc()
	if n.Attempts >= w.maxAttempts {
		w.deadLetter(ctx, n, err.Error())
		return
	}
	w.log.Warn().Err(err).
		Str("picking_id", n.PickingOrderID).
		Str("kind", n.Kind).
		Int("attempts", n.Attempts).
		Msg("notificación fallida, se reintenta")
	data, _ := json.Marshal(n)
	if err := w.rdb.LPush(ctx, w.queue, data).Err(); err != nil {
		w.log.Error().Err(err).Str("picking_id", n.PickingOrderID).Msg("no se pudo reencolar la notificación")
	}
}

func (w *Worker) deadLetter(ctx context.Context, n ports.Notification, reason string) {
	entry := DLQEntry{
		OriginalQueue: w.queue,
		Notification:  n,
		Reason:        reason,
		FailedAt:      w.now().UTC().Format(time.RFC3339),
		Attempts:      n.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		w.log.Error().Err(err).Msg("dlq: serializar entrada")
		return
	}
	key := DLQPrefix + w.queue
	if err := w.rdb.LPush(ctx, key, data).Err(); err != nil {
		w.log.Error().Err(err).Str("dlq_key", key).Msg("dlq: no se pudo encolar")
		return
	}
	metrics.NotificationsDeadLettered.WithLabelValues(n.Kind).Inc()
	w.log.Warn().
		Str("picking_id", n.PickingOrderID).
		Str("kind", n.Kind).
		Str("reason", reason).
		Int("attempts", n.Attempts).
		Msg("dlq: notificación movida a la cola de fallidos")
}

// DLQLength número de notificaciones en la cola de fallidos.
func (w *Worker) DLQLength(ctx context.Context) (int64, error) {
	return w.rdb.LLen(ctx, DLQPrefix+w.queue).Result()
}
