package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

type stockRepo struct{ s *state }

func (r *stockRepo) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	rec, ok := r.s.stock[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *stockRepo) GetByLocationLot(_ context.Context, locationID, lotID string) (*entity.StockRecord, error) {
	for _, rec := range r.s.stock {
		if rec.LocationID == locationID && rec.LotID == lotID {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *stockRepo) GetByLocationLotForUpdate(ctx context.Context, locationID, lotID string) (*entity.StockRecord, error) {
	return r.GetByLocationLot(ctx, locationID, lotID)
}

func (r *stockRepo) EnsureForUpdate(ctx context.Context, locationID, lotID string) (*entity.StockRecord, bool, error) {
	if rec, _ := r.GetByLocationLot(ctx, locationID, lotID); rec != nil {
		return rec, false, nil
	}
	if _, ok := r.s.locations[locationID]; !ok {
		return nil, false, domain.ErrNotFound
	}
	if _, ok := r.s.lots[lotID]; !ok {
		return nil, false, domain.ErrNotFound
	}
	rec := entity.StockRecord{
		ID:          newID(""),
		LocationID:  locationID,
		LotID:       lotID,
		PhysicalQty: decimal.Zero,
		ReservedQty: decimal.Zero,
		UpdatedAt:   time.Now(),
	}
	r.s.stock[rec.ID] = rec
	return &rec, true, nil
}

func (r *stockRepo) candidates(productID string, onlyAvailable bool) []entity.StockCandidate {
	var out []entity.StockCandidate
	for _, rec := range r.s.stock {
		lot, ok := r.s.lots[rec.LotID]
		if !ok || lot.ProductID != productID {
			continue
		}
		if onlyAvailable && !rec.Available().IsPositive() {
			continue
		}
		loc := r.s.locations[rec.LocationID]
		out = append(out, entity.StockCandidate{
			Record:             rec,
			ProductID:          lot.ProductID,
			LotNumber:          lot.LotNumber,
			LotExpiresAt:       lot.ExpiresAt,
			LotQualityStatus:   lot.QualityStatus,
			LocationQuarantine: loc.Quarantine,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Record.ID < out[j].Record.ID })
	return out
}

func (r *stockRepo) ListCandidates(_ context.Context, productID string) ([]entity.StockCandidate, error) {
	return r.candidates(productID, true), nil
}

func (r *stockRepo) ListByProduct(_ context.Context, productID string) ([]entity.StockCandidate, error) {
	return r.candidates(productID, false), nil
}

func (r *stockRepo) Update(_ context.Context, rec *entity.StockRecord) error {
	if _, ok := r.s.stock[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.stock[rec.ID] = *rec
	return nil
}

// ── Kárdex ──────────────────────────────────────────────────────────────────

type kardexRepo struct{ s *state }

func (r *kardexRepo) Append(_ context.Context, e *entity.KardexEntry) error {
	e.ID = newID(e.ID)
	r.s.kardex = append(r.s.kardex, *e)
	return nil
}

func (r *kardexRepo) List(_ context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for i := range r.s.kardex {
		e := r.s.kardex[i]
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.LotID != "" && e.LotID != f.LotID {
			continue
		}
		if f.LocationID != "" && e.LocationID() != f.LocationID {
			continue
		}
		if f.MovementType != "" && e.MovementType != f.MovementType {
			continue
		}
		if f.From != nil && e.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.OccurredAt.After(*f.To) {
			continue
		}
		out = append(out, &e)
	}
	// orden de inserción = cronológico
	if f.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *kardexRepo) ListForRecord(_ context.Context, stockRecordID string) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for i := range r.s.kardex {
		e := r.s.kardex[i]
		if e.StockRecordID == stockRecordID {
			out = append(out, &e)
		}
	}
	return out, nil
}
