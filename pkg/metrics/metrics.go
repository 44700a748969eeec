// Package metrics expone los contadores Prometheus del servicio (servidos en /metrics).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "almacen"

var (
	ReservationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Reservas procesadas por resultado (ok, conflict, error).",
	}, []string{"result"})

	PicksRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "picks_recorded_total",
		Help:      "Picks registrados; split=true cuando hubo cambio de lote.",
	}, []string{"split"})

	PickingCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "picking_completed_total",
		Help:      "Órdenes de picking completadas.",
	})

	SettlementSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlement_skipped_total",
		Help:      "Líneas omitidas en la liquidación por motivo.",
	}, []string{"reason"})

	KardexEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kardex_entries_total",
		Help:      "Movimientos de kárdex confirmados por tipo.",
	}, []string{"type"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_notifications_failed_total",
		Help:      "Notificaciones al sistema de órdenes fallidas por tipo.",
	}, []string{"kind"})
)

// NotificationsDeadLettered notificaciones que agotaron reintentos y pasaron a la cola de fallidos.
var NotificationsDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "order_notifications_dead_lettered_total",
	Help:      "Notificaciones movidas a la cola de fallidos por tipo.",
}, []string{"kind"})
