// Package picking implementa el motor de picking: creación con sugerencia FEFO y reserva,
// máquina de estados del operario, registro de picks con cambio de lote y liquidación
// contra el libro de existencias al completar.
//
// Cada transición bloquea la fila de la orden (FOR UPDATE); los registros de stock que
// toca una misma operación se bloquean en orden ascendente de id.
package picking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	dompicking "github.com/jhoicas/Almacen-api/internal/domain/picking"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Engine motor de picking.
type Engine struct {
	tx       repository.TxRunner
	ledger   *stock.Ledger
	notifier ports.Notifier
	catalog  ports.CatalogClient
	users    ports.UserDirectory
	pickList ports.PickListGenerator
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewEngine construye el motor. notifier, catalog, users y pickList pueden ser nil.
func NewEngine(
	tx repository.TxRunner,
	ledger *stock.Ledger,
	notifier ports.Notifier,
	catalog ports.CatalogClient,
	users ports.UserDirectory,
	pickList ports.PickListGenerator,
	log *logger.Logger,
) *Engine {
	return &Engine{
		tx:       tx,
		ledger:   ledger,
		notifier: notifier,
		catalog:  catalog,
		users:    users,
		pickList: pickList,
		log:      log.Component("picking"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Suggest propone el origen (ubicación, lote) para needed unidades del producto. nil si no hay stock.
func (e *Engine) Suggest(ctx context.Context, productID string, needed decimal.Decimal) (*entity.StockCandidate, error) {
	if productID == "" || !needed.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.StockCandidate
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		cands, err := r.Stock.ListCandidates(ctx, productID)
		if err != nil {
			return err
		}
		out = dompicking.Suggest(cands, needed)
		return nil
	})
	return out, err
}

// CreateItem línea solicitada.
type CreateItem struct {
	ProductID     string
	Quantity      decimal.Decimal
	StockRecordID string // opcional: origen explícito
}

// CreateInput solicitud de orden de picking.
type CreateInput struct {
	SourceOrderID string
	ReservationID string // opcional: adopta las líneas y reservas de la reserva
	Priority      int
	Items         []CreateItem
}

// Create crea la orden de picking de una orden de origen.
//
// Con ReservationID las líneas salen de la reserva (que debe estar ACTIVE), heredan su reserva
// sin volver a reservar y la reserva pasa a CONFIRMED en la misma transacción.
// Sin reserva, cada línea usa el registro explícito si tiene disponible o la sugerencia FEFO,
// y reserva min(solicitado, disponible); una reserva parcial es válida.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*entity.PickingOrder, error) {
	if in.SourceOrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ReservationID != "" && len(in.Items) > 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.ReservationID == "" {
		if len(in.Items) == 0 {
			return nil, domain.ErrInvalidInput
		}
		for _, it := range in.Items {
			if it.ProductID == "" || !it.Quantity.IsPositive() {
				return nil, domain.ErrInvalidInput
			}
		}
	}

	now := e.now()
	order := &entity.PickingOrder{
		ID:            e.newID(),
		SourceOrderID: in.SourceOrderID,
		Priority:      in.Priority,
		State:         entity.PickingAssigned,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		existing, err := r.Picking.GetBySourceOrder(ctx, in.SourceOrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicatePicking
		}

		var items []entity.PickingItem
		if in.ReservationID != "" {
			items, err = e.itemsFromReservation(ctx, r, in.ReservationID, order, now)
		} else {
			items, err = e.itemsWithSuggestion(ctx, r, in.Items, order, now)
		}
		if err != nil {
			return err
		}
		order.Items = items
		if in.ReservationID != "" {
			resID := in.ReservationID
			order.ReservationID = &resID
		}
		return r.Picking.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("picking_id", order.ID).
		Str("source_order_id", order.SourceOrderID).
		Int("items", len(order.Items)).
		Msg("orden de picking creada")
	return order, nil
}

func (e *Engine) itemsFromReservation(ctx context.Context, r repository.TxRepos, reservationID string, order *entity.PickingOrder, now time.Time) ([]entity.PickingItem, error) {
	res, err := r.Reservations.GetForUpdate(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != entity.ReservationActive {
		return nil, domain.ErrConflict
	}
	items := make([]entity.PickingItem, 0, len(res.Items))
	for _, ri := range res.Items {
		rec, err := r.Stock.GetByID(ctx, ri.StockRecordID)
		if err != nil {
			return nil, err
		}
		items = append(items, e.newItem(order.ID, ri.ProductID, ri.Quantity, rec, ri.Quantity, now))
	}
	res.Status = entity.ReservationConfirmed
	res.ConfirmedAt = &now
	if err := r.Reservations.UpdateStatus(ctx, res); err != nil {
		return nil, err
	}
	return items, nil
}

func (e *Engine) itemsWithSuggestion(ctx context.Context, r repository.TxRepos, in []CreateItem, order *entity.PickingOrder, now time.Time) ([]entity.PickingItem, error) {
	// 1. elegir origen sin bloquear. claimed acumula lo que ya tomaron las líneas anteriores
	// de esta misma orden, para que cada sugerencia vea el disponible que le queda.
	sources := make([]string, len(in))
	claimed := make(map[string]decimal.Decimal)
	claim := func(i int, recID string, left, qty decimal.Decimal) {
		sources[i] = recID
		claimed[recID] = claimed[recID].Add(decimal.Min(qty, left))
	}
	for i, it := range in {
		if it.StockRecordID != "" {
			rec, err := r.Stock.GetByID(ctx, it.StockRecordID)
			if err != nil {
				return nil, err
			}
			lot, err := r.Lots.GetByID(ctx, rec.LotID)
			if err != nil {
				return nil, err
			}
			if lot.ProductID != it.ProductID {
				return nil, domain.ErrLotMismatch
			}
			if left := rec.Available().Sub(claimed[rec.ID]); left.IsPositive() {
				claim(i, rec.ID, left, it.Quantity)
				continue
			}
		}
		cands, err := r.Stock.ListCandidates(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if c := dompicking.Suggest(withClaims(cands, claimed), it.Quantity); c != nil {
			claim(i, c.Record.ID, c.Record.Available(), it.Quantity)
		}
	}

	// 2. bloquear en orden de id
	locked, err := lockSorted(ctx, r, sources)
	if err != nil {
		return nil, err
	}

	// 3. reservar lo que alcance, línea por línea
	items := make([]entity.PickingItem, 0, len(in))
	for i, it := range in {
		rec := locked[sources[i]]
		reservedQty := decimal.Zero
		if rec != nil {
			reservedQty = decimal.Min(it.Quantity, rec.Available())
			if reservedQty.IsPositive() {
				if err := e.ledger.ReserveInTx(ctx, r, rec, reservedQty); err != nil {
					return nil, err
				}
			} else {
				reservedQty = decimal.Zero
			}
		}
		items = append(items, e.newItem(order.ID, it.ProductID, it.Quantity, rec, reservedQty, now))
	}
	return items, nil
}

func (e *Engine) newItem(orderID, productID string, requested decimal.Decimal, rec *entity.StockRecord, reserved decimal.Decimal, now time.Time) entity.PickingItem {
	item := entity.PickingItem{
		ID:             e.newID(),
		PickingOrderID: orderID,
		ProductID:      productID,
		RequestedQty:   requested,
		ReservedQty:    reserved,
		PickedQty:      decimal.Zero,
		LineState:      entity.LinePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if rec != nil {
		recID, locID, lotID := rec.ID, rec.LocationID, rec.LotID
		item.SuggestedStockRecordID = &recID
		item.SuggestedLocationID = &locID
		item.SuggestedLotID = &lotID
	}
	return item
}

// withClaims copia los candidatos sumando a la reserva lo ya tomado por líneas anteriores.
func withClaims(cands []entity.StockCandidate, claimed map[string]decimal.Decimal) []entity.StockCandidate {
	out := make([]entity.StockCandidate, len(cands))
	copy(out, cands)
	for i := range out {
		if q, ok := claimed[out[i].Record.ID]; ok {
			out[i].Record.ReservedQty = out[i].Record.ReservedQty.Add(q)
		}
	}
	return out
}

// lockSorted bloquea los ids no vacíos en orden ascendente. Las entradas vacías se ignoran.
func lockSorted(ctx context.Context, r repository.TxRepos, ids []string) (map[string]*entity.StockRecord, error) {
	uniq := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			uniq[id] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(uniq))
	for id := range uniq {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	locked := make(map[string]*entity.StockRecord, len(sorted))
	for _, id := range sorted {
		rec, err := r.Stock.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = rec
	}
	return locked, nil
}

var errNoPickList = fmt.Errorf("%w: generador de hoja de picking no configurado", domain.ErrUnexpected)
