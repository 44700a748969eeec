// Package stock implementa el libro de existencias por (ubicación, lote).
//
// Cada operación corre en su propia transacción con la fila bloqueada (SELECT ... FOR UPDATE).
// Las variantes InTx reciben los repositorios de la transacción del llamador y un registro
// ya bloqueado, para que reservas y picking compongan varias mutaciones en una sola unidad.
// Toda mutación de la cantidad física agrega exactamente un movimiento al kárdex en la misma
// transacción; reservar y liberar nunca lo hacen.
package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/Almacen-api/internal/domain/stock"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/jhoicas/Almacen-api/pkg/metrics"
)

// Movement datos del documento que origina un movimiento físico.
type Movement struct {
	UserID       string
	DocumentType string
	DocumentRef  string
	UnitCost     *decimal.Decimal
}

// Ledger casos de uso del libro de existencias.
type Ledger struct {
	tx        repository.TxRunner
	publisher ports.MovementPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewLedger construye el libro. publisher puede ser nil.
func NewLedger(tx repository.TxRunner, publisher ports.MovementPublisher, log *logger.Logger) *Ledger {
	return &Ledger{tx: tx, publisher: publisher, log: log.Component("stock"), now: time.Now}
}

// Reserve aumenta la cantidad reservada de (location, lot). Conflict si no alcanza el disponible.
func (l *Ledger) Reserve(ctx context.Context, locationID, lotID string, qty decimal.Decimal) error {
	return l.tx.Run(ctx, func(r repository.TxRepos) error {
		rec, err := lockAt(ctx, r, locationID, lotID)
		if err != nil {
			return err
		}
		return l.ReserveInTx(ctx, r, rec, qty)
	})
}

// ReserveInTx reserva sobre un registro ya bloqueado.
func (l *Ledger) ReserveInTx(ctx context.Context, r repository.TxRepos, rec *entity.StockRecord, qty decimal.Decimal) error {
	if err := domstock.Reserve(rec, qty); err != nil {
		return err
	}
	rec.UpdatedAt = l.now()
	return r.Stock.Update(ctx, rec)
}

// Release libera hasta qty de la reserva (nunca por debajo de cero). Devuelve lo liberado.
func (l *Ledger) Release(ctx context.Context, locationID, lotID string, qty decimal.Decimal) (decimal.Decimal, error) {
	released := decimal.Zero
	err := l.tx.Run(ctx, func(r repository.TxRepos) error {
		rec, err := lockAt(ctx, r, locationID, lotID)
		if err != nil {
			return err
		}
		released, err = l.ReleaseInTx(ctx, r, rec, qty)
		return err
	})
	return released, err
}

// ReleaseInTx libera sobre un registro ya bloqueado.
func (l *Ledger) ReleaseInTx(ctx context.Context, r repository.TxRepos, rec *entity.StockRecord, qty decimal.Decimal) (decimal.Decimal, error) {
	if qty.IsNegative() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	released := domstock.Release(rec, qty)
	if released.IsZero() {
		return released, nil
	}
	rec.UpdatedAt = l.now()
	return released, r.Stock.Update(ctx, rec)
}

// AdjustPhysical suma delta (con signo) a la cantidad física. Crea el registro en la primera
// entrada; la primera entrada de un registro nuevo se registra como ENTRADA_INICIAL.
func (l *Ledger) AdjustPhysical(ctx context.Context, locationID, lotID string, delta decimal.Decimal, mv Movement) (*entity.KardexEntry, error) {
	var entry *entity.KardexEntry
	err := l.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		entry, err = l.AdjustPhysicalInTx(ctx, r, locationID, lotID, delta, mv)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.Publish(ctx, entry)
	return entry, nil
}

// AdjustPhysicalInTx ajuste dentro de la transacción del llamador.
func (l *Ledger) AdjustPhysicalInTx(ctx context.Context, r repository.TxRepos, locationID, lotID string, delta decimal.Decimal, mv Movement) (*entity.KardexEntry, error) {
	if delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	var (
		rec     *entity.StockRecord
		created bool
		err     error
	)
	if delta.IsPositive() {
		rec, created, err = r.Stock.EnsureForUpdate(ctx, locationID, lotID)
	} else {
		rec, err = lockAt(ctx, r, locationID, lotID)
	}
	if err != nil {
		return nil, err
	}

	movType := entity.MovementAdjustmentOut
	if delta.IsPositive() {
		movType = entity.MovementAdjustmentIn
		if created || (rec.PhysicalQty.IsZero() && rec.LastEntryAt == nil) {
			movType = entity.MovementInitialEntry
		}
	}
	if err := domstock.ApplyDelta(rec, delta); err != nil {
		return nil, err
	}
	return l.persist(ctx, r, rec, movType, delta.Abs(), mv)
}

// SettleOutbound descuenta qty de la cantidad física consumiendo reserva (SALIDA_PICKING).
func (l *Ledger) SettleOutbound(ctx context.Context, locationID, lotID string, qty decimal.Decimal, mv Movement) (*entity.KardexEntry, error) {
	var entry *entity.KardexEntry
	err := l.tx.Run(ctx, func(r repository.TxRepos) error {
		rec, err := lockAt(ctx, r, locationID, lotID)
		if err != nil {
			return err
		}
		entry, err = l.SettleOutboundInTx(ctx, r, rec, qty, mv)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.Publish(ctx, entry)
	return entry, nil
}

// SettleOutboundInTx liquida sobre un registro ya bloqueado. Si falla, rec queda intacto.
func (l *Ledger) SettleOutboundInTx(ctx context.Context, r repository.TxRepos, rec *entity.StockRecord, qty decimal.Decimal, mv Movement) (*entity.KardexEntry, error) {
	if err := domstock.Settle(rec, qty); err != nil {
		return nil, err
	}
	return l.persist(ctx, r, rec, entity.MovementPickingOut, qty, mv)
}

// ReturnToStock reingresa qty devuelta a (location, lot) como ENTRADA_DEVOLUCION.
func (l *Ledger) ReturnToStock(ctx context.Context, locationID, lotID string, qty decimal.Decimal, mv Movement) (*entity.KardexEntry, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var entry *entity.KardexEntry
	err := l.tx.Run(ctx, func(r repository.TxRepos) error {
		rec, _, err := r.Stock.EnsureForUpdate(ctx, locationID, lotID)
		if err != nil {
			return err
		}
		if err := domstock.ApplyDelta(rec, qty); err != nil {
			return err
		}
		entry, err = l.persist(ctx, r, rec, entity.MovementReturnIn, qty, mv)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.Publish(ctx, entry)
	return entry, nil
}

// Get lee el registro de (location, lot).
func (l *Ledger) Get(ctx context.Context, locationID, lotID string) (*entity.StockRecord, error) {
	var rec *entity.StockRecord
	err := l.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		rec, err = r.Stock.GetByLocationLot(ctx, locationID, lotID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		return nil
	})
	return rec, err
}

// ListByProduct devuelve todos los registros del producto, incluidos los que están en cero.
func (l *Ledger) ListByProduct(ctx context.Context, productID string) ([]entity.StockCandidate, error) {
	var out []entity.StockCandidate
	err := l.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		out, err = r.Stock.ListByProduct(ctx, productID)
		return err
	})
	return out, err
}

// Publish envía al bus los movimientos ya confirmados. Un fallo sólo se registra.
func (l *Ledger) Publish(ctx context.Context, entries ...*entity.KardexEntry) {
	var batch []*entity.KardexEntry
	for _, e := range entries {
		if e == nil {
			continue
		}
		metrics.KardexEntries.WithLabelValues(e.MovementType).Inc()
		batch = append(batch, e)
	}
	if l.publisher == nil || len(batch) == 0 {
		return
	}
	if err := l.publisher.Publish(ctx, batch); err != nil {
		l.log.Warn().Err(err).Int("entries", len(batch)).Msg("no se pudieron publicar movimientos de kárdex")
	}
}

func (l *Ledger) persist(ctx context.Context, r repository.TxRepos, rec *entity.StockRecord, movType string, qty decimal.Decimal, mv Movement) (*entity.KardexEntry, error) {
	if err := domstock.CheckInvariant(rec); err != nil {
		return nil, err
	}
	lot, err := r.Lots.GetByID(ctx, rec.LotID)
	if err != nil {
		return nil, err
	}
	now := l.now()
	rec.UpdatedAt = now
	entry := &entity.KardexEntry{
		ID:               uuid.New().String(),
		OccurredAt:       now,
		MovementType:     movType,
		DocumentType:     mv.DocumentType,
		DocumentRef:      mv.DocumentRef,
		ProductID:        lot.ProductID,
		LotID:            rec.LotID,
		StockRecordID:    rec.ID,
		Quantity:         qty,
		ResultingBalance: rec.PhysicalQty,
		UserID:           mv.UserID,
		UnitCost:         mv.UnitCost,
	}
	locID := rec.LocationID
	if entry.IsInbound() {
		entry.DestinationLocationID = &locID
		rec.LastEntryAt = &now
	} else {
		entry.OriginLocationID = &locID
	}
	if err := r.Stock.Update(ctx, rec); err != nil {
		return nil, err
	}
	if err := r.Kardex.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func lockAt(ctx context.Context, r repository.TxRepos, locationID, lotID string) (*entity.StockRecord, error) {
	rec, err := r.Stock.GetByLocationLotForUpdate(ctx, locationID, lotID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
