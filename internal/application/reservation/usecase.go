// Package reservation implementa la pre-asignación atómica de stock para varias líneas.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/Almacen-api/internal/domain/stock"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/jhoicas/Almacen-api/pkg/metrics"
)

// ItemInput línea a reservar.
type ItemInput struct {
	ProductID string
	SKU       string
	Quantity  decimal.Decimal
}

// CreateInput solicitud de reserva.
type CreateInput struct {
	ExternalRef string
	Items       []ItemInput
}

// UseCase motor de reservas.
type UseCase struct {
	tx  repository.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewUseCase construye el motor.
func NewUseCase(tx repository.TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, log: log.Component("reservation"), now: time.Now}
}

// Create reserva todas las líneas o ninguna.
//
// Fases, todas en una transacción:
//  1. elegir un registro por línea sin bloquear, descontando lo ya asignado a líneas anteriores;
//  2. bloquear los registros elegidos en orden ascendente de id;
//  3. verificar bajo bloqueo la demanda agregada por registro;
//  4. incrementar reservado y persistir la reserva con sus ítems.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Reservation, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.now()
	res := &entity.Reservation{
		ID:          uuid.New().String(),
		ExternalRef: in.ExternalRef,
		Status:      entity.ReservationActive,
		CreatedAt:   now,
	}

	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		chosen, err := chooseRecords(ctx, r, in.Items)
		if err != nil {
			return err
		}

		locked, err := lockSorted(ctx, r, chosen)
		if err != nil {
			return err
		}

		demand := make(map[string]decimal.Decimal)
		for i, id := range chosen {
			demand[id] = demand[id].Add(in.Items[i].Quantity)
		}
		for _, id := range sortedKeys(demand) {
			rec := locked[id]
			if rec.Available().LessThan(demand[id]) {
				return fmt.Errorf("%w: registro %s disponible %s, requerido %s",
					domain.ErrInsufficientStock, id, rec.Available(), demand[id])
			}
		}

		for i, it := range in.Items {
			rec := locked[chosen[i]]
			if err := domstock.Reserve(rec, it.Quantity); err != nil {
				return err
			}
			res.Items = append(res.Items, entity.ReservationItem{
				ID:            uuid.New().String(),
				ReservationID: res.ID,
				ProductID:     it.ProductID,
				SKU:           it.SKU,
				Quantity:      it.Quantity,
				StockRecordID: rec.ID,
			})
		}
		for _, id := range sortedKeys(demand) {
			rec := locked[id]
			rec.UpdatedAt = now
			if err := r.Stock.Update(ctx, rec); err != nil {
				return err
			}
		}
		return r.Reservations.Create(ctx, res)
	})
	if err != nil {
		metrics.ReservationsCreated.WithLabelValues(resultLabel(err)).Inc()
		uc.log.Warn().Err(err).Str("external_ref", in.ExternalRef).Int("items", len(in.Items)).Msg("reserva rechazada")
		return nil, err
	}
	metrics.ReservationsCreated.WithLabelValues("ok").Inc()
	uc.log.Info().Str("reservation_id", res.ID).Str("external_ref", res.ExternalRef).Int("items", len(res.Items)).Msg("reserva creada")
	return res, nil
}

// Remove cancela una reserva ACTIVE liberando cada ítem. Cualquier otro estado es no-op.
func (uc *UseCase) Remove(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	released := false
	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		res, err := r.Reservations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status != entity.ReservationActive {
			return nil
		}

		ids := make([]string, len(res.Items))
		for i, it := range res.Items {
			ids[i] = it.StockRecordID
		}
		locked, err := lockSorted(ctx, r, ids)
		if err != nil {
			return err
		}
		for _, it := range res.Items {
			domstock.Release(locked[it.StockRecordID], it.Quantity)
		}
		now := uc.now()
		for _, recID := range sortedUnique(ids) {
			rec := locked[recID]
			rec.UpdatedAt = now
			if err := r.Stock.Update(ctx, rec); err != nil {
				return err
			}
		}

		res.Status = entity.ReservationCancelled
		res.CancelledAt = &now
		released = true
		return r.Reservations.UpdateStatus(ctx, res)
	})
	if err != nil {
		return err
	}
	if released {
		uc.log.Info().Str("reservation_id", id).Msg("reserva cancelada")
	}
	return nil
}

// Get lee una reserva con sus ítems.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Reservation, error) {
	var res *entity.Reservation
	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		res, err = r.Reservations.GetByID(ctx, id)
		return err
	})
	return res, err
}

// chooseRecords devuelve, por línea, el id del registro elegido. Prefiere lotes LIBERADO y,
// entre ellos, el vencimiento más cercano.
func chooseRecords(ctx context.Context, r repository.TxRepos, items []ItemInput) ([]string, error) {
	tentative := make(map[string]decimal.Decimal)
	byProduct := make(map[string][]entity.StockCandidate)
	chosen := make([]string, len(items))

	for i, it := range items {
		cands, ok := byProduct[it.ProductID]
		if !ok {
			var err error
			cands, err = r.Stock.ListCandidates(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			sortPreferred(cands)
			byProduct[it.ProductID] = cands
		}
		for _, c := range cands {
			left := c.Record.Available().Sub(tentative[c.Record.ID])
			if left.GreaterThanOrEqual(it.Quantity) {
				chosen[i] = c.Record.ID
				tentative[c.Record.ID] = tentative[c.Record.ID].Add(it.Quantity)
				break
			}
		}
		if chosen[i] == "" {
			return nil, fmt.Errorf("%w: producto %s cantidad %s", domain.ErrInsufficientStock, it.ProductID, it.Quantity)
		}
	}
	return chosen, nil
}

func sortPreferred(cands []entity.StockCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		ar, br := a.LotQualityStatus == entity.QualityReleased, b.LotQualityStatus == entity.QualityReleased
		if ar != br {
			return ar
		}
		if !a.LotExpiresAt.Equal(b.LotExpiresAt) {
			return a.LotExpiresAt.Before(b.LotExpiresAt)
		}
		return a.Record.ID < b.Record.ID
	})
}

// lockSorted bloquea los registros en orden ascendente de id. Una fila desaparecida es NotFound.
func lockSorted(ctx context.Context, r repository.TxRepos, ids []string) (map[string]*entity.StockRecord, error) {
	locked := make(map[string]*entity.StockRecord, len(ids))
	for _, id := range sortedUnique(ids) {
		rec, err := r.Stock.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = rec
	}
	return locked, nil
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resultLabel(err error) string {
	if errors.Is(err, domain.ErrConflict) {
		return "conflict"
	}
	return "error"
}
