// Package kardex expone las consultas del libro de movimientos y la auditoría por reproducción.
// El kárdex sólo se escribe desde el libro de existencias; aquí no hay API de modificación.
package kardex

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Service consultas de kárdex.
type Service struct {
	tx repository.TxRunner
}

// NewService construye el servicio.
func NewService(tx repository.TxRunner) *Service {
	return &Service{tx: tx}
}

// List consulta movimientos con filtros. Sin Limit se devuelven los 100 primeros.
func (s *Service) List(ctx context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	if f.MovementType != "" && !validMovement(f.MovementType) {
		return nil, domain.ErrInvalidInput
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.ErrInvalidInput
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var out []*entity.KardexEntry
	err := s.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		out, err = r.Kardex.List(ctx, f)
		return err
	})
	return out, err
}

// ReplayResult resultado de reconstruir el saldo de un registro desde sus movimientos.
type ReplayResult struct {
	StockRecordID string
	Recorded      decimal.Decimal // cantidad física actual
	Replayed      decimal.Decimal // suma con signo de los movimientos
	Entries       int
	BrokenAt      string // primer movimiento cuyo saldo resultante no cuadra
	Consistent    bool
}

// Replay reconstruye la cantidad física de (location, lot) a partir del kárdex.
func (s *Service) Replay(ctx context.Context, locationID, lotID string) (*ReplayResult, error) {
	var res *ReplayResult
	err := s.tx.Run(ctx, func(r repository.TxRepos) error {
		rec, err := r.Stock.GetByLocationLot(ctx, locationID, lotID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		entries, err := r.Kardex.ListForRecord(ctx, rec.ID)
		if err != nil {
			return err
		}
		balance, brokenAt := Balance(entries)
		res = &ReplayResult{
			StockRecordID: rec.ID,
			Recorded:      rec.PhysicalQty,
			Replayed:      balance,
			Entries:       len(entries),
			BrokenAt:      brokenAt,
			Consistent:    brokenAt == "" && balance.Equal(rec.PhysicalQty),
		}
		return nil
	})
	return res, err
}

// Balance suma con signo los movimientos en orden cronológico y verifica que cada
// ResultingBalance coincida con el acumulado. brokenAt es el id del primer descuadre.
func Balance(entries []*entity.KardexEntry) (balance decimal.Decimal, brokenAt string) {
	balance = decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.SignedQuantity())
		if brokenAt == "" && !balance.Equal(e.ResultingBalance) {
			brokenAt = e.ID
		}
	}
	return balance, brokenAt
}

func validMovement(t string) bool {
	switch t {
	case entity.MovementInitialEntry, entity.MovementAdjustmentIn, entity.MovementAdjustmentOut,
		entity.MovementPickingOut, entity.MovementReturnIn:
		return true
	}
	return false
}
