package picking

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	dompicking "github.com/jhoicas/Almacen-api/internal/domain/picking"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/Almacen-api/internal/domain/stock"
	"github.com/jhoicas/Almacen-api/pkg/metrics"
)

// Assign asigna la orden a workerID. Reasignar al mismo operario no cambia nada.
func (e *Engine) Assign(ctx context.Context, orderID, workerID string) (*entity.PickingOrder, error) {
	var (
		order   *entity.PickingOrder
		changed bool
	)
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		if order, err = r.Picking.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if changed, err = dompicking.CheckAssign(order, workerID); err != nil || !changed {
			return err
		}
		w := workerID
		order.AssignedTo = &w
		order.UpdatedAt = e.now()
		return r.Picking.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		e.log.Info().Str("picking_id", order.ID).Str("worker_id", workerID).Msg("orden asignada")
		e.notify(ctx, ports.Notification{
			Kind:           ports.NotificationAssigned,
			PickingOrderID: order.ID,
			SourceOrderID:  order.SourceOrderID,
			WorkerID:       workerID,
		})
	}
	return order, nil
}

// Start pasa la orden a EN_PROCESO.
func (e *Engine) Start(ctx context.Context, orderID, workerID string) (*entity.PickingOrder, error) {
	var order *entity.PickingOrder
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		if order, err = r.Picking.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if err := dompicking.CheckStart(order, workerID); err != nil {
			return err
		}
		now := e.now()
		w := workerID
		order.AssignedTo = &w
		order.State = entity.PickingInProgress
		order.StartedAt = &now
		order.UpdatedAt = now
		return r.Picking.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("picking_id", order.ID).Str("worker_id", workerID).Msg("picking iniciado")
	return order, nil
}

// PickInput pick reportado para una línea.
type PickInput struct {
	OrderID             string
	ItemID              string
	Quantity            decimal.Decimal
	ConfirmedLotID      string // vacío: el sugerido
	ConfirmedLocationID string
	DeviationReason     string
	Notes               string
}

// PickResult línea actualizada y, si hubo cambio de lote, la línea hermana creada.
type PickResult struct {
	Item    entity.PickingItem
	Sibling *entity.PickingItem
}

// RecordPick registra cantidad pickeada sobre una línea. No cambia el estado de la orden.
func (e *Engine) RecordPick(ctx context.Context, in PickInput) (*PickResult, error) {
	if in.OrderID == "" || in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	var res *PickResult
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		order, err := r.Picking.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if err := dompicking.CheckRecordPick(order); err != nil {
			return err
		}
		item := findItem(order, in.ItemID)
		if item == nil {
			return domain.ErrNotFound
		}

		pick := dompicking.PickInput{
			Qty:             in.Quantity,
			DeviationReason: in.DeviationReason,
			Notes:           in.Notes,
		}
		if in.ConfirmedLotID != "" {
			if pick.ConfirmedLot, err = r.Lots.GetByID(ctx, in.ConfirmedLotID); err != nil {
				return err
			}
		}
		if in.ConfirmedLocationID != "" {
			if _, err := r.Locations.GetByID(ctx, in.ConfirmedLocationID); err != nil {
				return err
			}
			loc := in.ConfirmedLocationID
			pick.ConfirmedLocID = &loc
		}

		sibling, err := dompicking.ApplyPick(item, pick, e.now(), e.newID)
		if err != nil {
			return err
		}
		if err := r.Picking.UpdateItem(ctx, item); err != nil {
			return err
		}
		if sibling != nil {
			if err := r.Picking.CreateItem(ctx, sibling); err != nil {
				return err
			}
		}
		res = &PickResult{Item: *item, Sibling: sibling}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PicksRecorded.WithLabelValues(strconv.FormatBool(res.Sibling != nil)).Inc()
	ev := e.log.Info().
		Str("picking_id", in.OrderID).
		Str("item_id", in.ItemID).
		Str("qty", in.Quantity.String()).
		Str("line_state", res.Item.LineState)
	if res.Sibling != nil {
		ev = ev.Str("sibling_id", res.Sibling.ID).Str("deviation_reason", in.DeviationReason)
	}
	ev.Msg("pick registrado")
	return res, nil
}

// Complete cierra la orden y liquida lo pickeado contra el libro de existencias.
//
// Por línea con cantidad pickeada y origen resoluble se ejecuta SettleOutbound; los faltantes
// se registran y se omiten sin abortar. La reserva de la línea que el pick no consumió se libera.
func (e *Engine) Complete(ctx context.Context, orderID, workerID string) (*entity.PickingOrder, error) {
	var (
		order   *entity.PickingOrder
		entries []*entity.KardexEntry
		picked  []ports.PickedLine
	)
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		if order, err = r.Picking.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if err := dompicking.CheckComplete(order, workerID); err != nil {
			return err
		}
		if entries, picked, err = e.settle(ctx, r, order, workerID); err != nil {
			return err
		}

		now := e.now()
		if order.AssignedTo == nil {
			w := workerID
			order.AssignedTo = &w
		}
		order.State = entity.PickingCompleted
		order.FinishedAt = &now
		order.UpdatedAt = now
		return r.Picking.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	e.ledger.Publish(ctx, entries...)
	metrics.PickingCompleted.Inc()
	e.log.Info().
		Str("picking_id", order.ID).
		Str("worker_id", workerID).
		Int("settled", len(entries)).
		Msg("picking completado")
	e.notify(ctx, ports.Notification{
		Kind:           ports.NotificationCompleted,
		PickingOrderID: order.ID,
		SourceOrderID:  order.SourceOrderID,
		WorkerID:       workerID,
		Lines:          picked,
	})
	return order, nil
}

type settlement struct {
	item     *entity.PickingItem
	recordID string // registro a liquidar; vacío si no se pudo resolver
}

func (e *Engine) settle(ctx context.Context, r repository.TxRepos, order *entity.PickingOrder, workerID string) ([]*entity.KardexEntry, []ports.PickedLine, error) {
	plans := make([]settlement, 0, len(order.Items))
	var ids []string
	for i := range order.Items {
		item := &order.Items[i]
		p := settlement{item: item}
		if item.PickedQty.IsPositive() {
			loc, lot := item.SourceLocationID(), item.SourceLotID()
			if loc != nil && lot != nil {
				rec, err := r.Stock.GetByLocationLot(ctx, *loc, *lot)
				if err != nil {
					return nil, nil, err
				}
				if rec != nil {
					p.recordID = rec.ID
					ids = append(ids, rec.ID)
				}
			}
			if p.recordID == "" {
				metrics.SettlementSkipped.WithLabelValues("unresolved").Inc()
				e.log.Warn().Str("picking_id", order.ID).Str("item_id", item.ID).Msg("línea sin origen resoluble; se omite la liquidación")
			}
		}
		if item.ReservedQty.IsPositive() && item.SuggestedStockRecordID != nil {
			ids = append(ids, *item.SuggestedStockRecordID)
		}
		plans = append(plans, p)
	}

	locked, err := lockSorted(ctx, r, ids)
	if err != nil {
		return nil, nil, err
	}

	mv := stock.Movement{UserID: workerID, DocumentType: entity.DocumentPicking, DocumentRef: order.ID}
	var (
		entries []*entity.KardexEntry
		picked  []ports.PickedLine
	)
	for _, p := range plans {
		item := p.item
		consumed := decimal.Zero
		if p.recordID != "" {
			rec := locked[p.recordID]
			entry, err := e.ledger.SettleOutboundInTx(ctx, r, rec, item.PickedQty, mv)
			switch {
			case errors.Is(err, domain.ErrInsufficientStock):
				metrics.SettlementSkipped.WithLabelValues("shortfall").Inc()
				e.log.Warn().Err(err).
					Str("picking_id", order.ID).
					Str("item_id", item.ID).
					Str("stock_record_id", rec.ID).
					Str("picked", item.PickedQty.String()).
					Msg("faltante en liquidación; se omite la línea")
			case err != nil:
				return nil, nil, err
			default:
				entries = append(entries, entry)
				picked = append(picked, ports.PickedLine{
					ProductID:        item.ProductID,
					LotID:            rec.LotID,
					LocationID:       rec.LocationID,
					Quantity:         item.PickedQty,
					AdjustmentReason: item.DeviationReason,
				})
				if item.SuggestedStockRecordID != nil && *item.SuggestedStockRecordID == rec.ID {
					consumed = decimal.Min(item.PickedQty, item.ReservedQty)
				}
			}
		}

		leftover := item.ReservedQty.Sub(consumed)
		if leftover.IsPositive() && item.SuggestedStockRecordID != nil {
			if _, err := e.ledger.ReleaseInTx(ctx, r, locked[*item.SuggestedStockRecordID], leftover); err != nil {
				return nil, nil, err
			}
		}
		if item.ReservedQty.IsPositive() {
			item.ReservedQty = decimal.Zero
			item.UpdatedAt = e.now()
			if err := r.Picking.UpdateItem(ctx, item); err != nil {
				return nil, nil, err
			}
		}
	}
	return entries, picked, nil
}

// Cancel libera las reservas de las líneas y borra lógicamente la orden. Repetir es no-op.
func (e *Engine) Cancel(ctx context.Context, orderID string) error {
	cancelled := false
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		order, err := r.Picking.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		noop, err := dompicking.CheckCancel(order)
		if err != nil || noop {
			return err
		}

		var ids []string
		for _, it := range order.Items {
			if it.ReservedQty.IsPositive() && it.SuggestedStockRecordID != nil {
				ids = append(ids, *it.SuggestedStockRecordID)
			}
		}
		locked, err := lockSorted(ctx, r, ids)
		if err != nil {
			return err
		}

		now := e.now()
		for i := range order.Items {
			it := &order.Items[i]
			if !it.ReservedQty.IsPositive() || it.SuggestedStockRecordID == nil {
				continue
			}
			rec := locked[*it.SuggestedStockRecordID]
			domstock.Release(rec, it.ReservedQty)
			it.ReservedQty = decimal.Zero
			it.UpdatedAt = now
			if err := r.Picking.UpdateItem(ctx, it); err != nil {
				return err
			}
		}
		for _, id := range sortedIDs(locked) {
			rec := locked[id]
			rec.UpdatedAt = now
			if err := r.Stock.Update(ctx, rec); err != nil {
				return err
			}
		}

		order.DeletedAt = &now
		order.UpdatedAt = now
		cancelled = true
		return r.Picking.UpdateOrder(ctx, order)
	})
	if err != nil {
		return err
	}
	if cancelled {
		e.log.Info().Str("picking_id", orderID).Msg("orden de picking cancelada")
	}
	return nil
}

// notify entrega la notificación sin afectar la transición ya confirmada.
func (e *Engine) notify(ctx context.Context, n ports.Notification) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationsFailed.WithLabelValues(n.Kind).Inc()
		e.log.Error().Err(err).
			Str("picking_id", n.PickingOrderID).
			Str("source_order_id", n.SourceOrderID).
			Str("kind", n.Kind).
			Msg("no se pudo notificar al sistema de órdenes")
	}
}

func findItem(order *entity.PickingOrder, itemID string) *entity.PickingItem {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i]
		}
	}
	return nil
}

func sortedIDs(m map[string]*entity.StockRecord) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
