package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockColumns = `id, location_id, lot_id, physical_qty, reserved_qty, last_entry_at, updated_at`

func (r *StockRecordRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.LocationID, &s.LotID, &s.PhysicalQty, &s.ReservedQty, &s.LastEntryAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

func notFoundIfNil(rec *entity.StockRecord, err error) (*entity.StockRecord, error) {
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// GetByID obtiene un registro por id.
func (r *StockRecordRepo) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	return notFoundIfNil(r.getOne(ctx, "get stock", `SELECT `+stockColumns+` FROM stock_records WHERE id = $1`, id))
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return notFoundIfNil(r.getOne(ctx, "get stock for update",
		`SELECT `+stockColumns+` FROM stock_records WHERE id = $1 FOR UPDATE`, id))
}

// GetByLocationLot obtiene el registro de (ubicación, lote) o nil.
func (r *StockRecordRepo) GetByLocationLot(ctx context.Context, locationID, lotID string) (*entity.StockRecord, error) {
	return r.getOne(ctx, "get stock by location/lot",
		`SELECT `+stockColumns+` FROM stock_records WHERE location_id = $1 AND lot_id = $2`, locationID, lotID)
}

// GetByLocationLotForUpdate igual que GetByLocationLot pero bloqueando la fila.
func (r *StockRecordRepo) GetByLocationLotForUpdate(ctx context.Context, locationID, lotID string) (*entity.StockRecord, error) {
	return r.getOne(ctx, "get stock by location/lot for update",
		`SELECT `+stockColumns+` FROM stock_records WHERE location_id = $1 AND lot_id = $2 FOR UPDATE`, locationID, lotID)
}

// EnsureForUpdate inserta el registro en cero si no existe (ON CONFLICT DO NOTHING) y lo bloquea.
func (r *StockRecordRepo) EnsureForUpdate(ctx context.Context, locationID, lotID string) (*entity.StockRecord, bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO stock_records (id, location_id, lot_id, physical_qty, reserved_qty, updated_at)
		VALUES ($1, $2, $3, 0, 0, now())
		ON CONFLICT (location_id, lot_id) DO NOTHING`,
		uuid.New().String(), locationID, lotID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("ensure stock: %w", err)
	}
	rec, err := notFoundIfNil(r.GetByLocationLotForUpdate(ctx, locationID, lotID))
	if err != nil {
		return nil, false, err
	}
	return rec, tag.RowsAffected() == 1, nil
}

const candidateQuery = `
	SELECT s.id, s.location_id, s.lot_id, s.physical_qty, s.reserved_qty, s.last_entry_at, s.updated_at,
	       l.product_id, l.lot_number, l.expires_at, l.quality_status, loc.quarantine
	FROM stock_records s
	JOIN lots l ON l.id = s.lot_id
	JOIN locations loc ON loc.id = s.location_id
	WHERE l.product_id = $1`

func (r *StockRecordRepo) listCandidates(ctx context.Context, query string, productID string) ([]entity.StockCandidate, error) {
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock candidates: %w", err)
	}
	defer rows.Close()

	var out []entity.StockCandidate
	for rows.Next() {
		var c entity.StockCandidate
		s := &c.Record
		if err := rows.Scan(
			&s.ID, &s.LocationID, &s.LotID, &s.PhysicalQty, &s.ReservedQty, &s.LastEntryAt, &s.UpdatedAt,
			&c.ProductID, &c.LotNumber, &c.LotExpiresAt, &c.LotQualityStatus, &c.LocationQuarantine,
		); err != nil {
			return nil, fmt.Errorf("scan stock candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListCandidates registros del producto con disponible > 0 (sin bloquear).
func (r *StockRecordRepo) ListCandidates(ctx context.Context, productID string) ([]entity.StockCandidate, error) {
	return r.listCandidates(ctx, candidateQuery+`
	  AND s.physical_qty - s.reserved_qty > 0
	ORDER BY l.expires_at, loc.quarantine, l.lot_number, s.id`, productID)
}

// ListByProduct todos los registros del producto, incluidos los que están en cero.
func (r *StockRecordRepo) ListByProduct(ctx context.Context, productID string) ([]entity.StockCandidate, error) {
	return r.listCandidates(ctx, candidateQuery+`
	ORDER BY l.expires_at, loc.quarantine, l.lot_number, s.id`, productID)
}

// Update persiste los contadores del registro.
func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_records
		SET physical_qty = $2, reserved_qty = $3, last_entry_at = $4, updated_at = $5
		WHERE id = $1`,
		rec.ID, rec.PhysicalQty, rec.ReservedQty, rec.LastEntryAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
