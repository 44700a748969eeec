package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo libro de movimientos sobre PostgreSQL. Sólo INSERT y SELECT.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador. Acepta pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const kardexColumns = `id, occurred_at, movement_type, document_type, document_ref, product_id, lot_id, stock_record_id,
	origin_location_id, destination_location_id, quantity, resulting_balance, user_id, unit_cost`

// Append inserta un movimiento.
func (r *KardexRepo) Append(ctx context.Context, e *entity.KardexEntry) error {
	query := `INSERT INTO kardex_entries (` + kardexColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.OccurredAt, e.MovementType, e.DocumentType, e.DocumentRef, e.ProductID, e.LotID, e.StockRecordID,
		e.OriginLocationID, e.DestinationLocationID, e.Quantity, e.ResultingBalance, e.UserID, e.UnitCost,
	)
	if err != nil {
		return fmt.Errorf("insert kardex entry: %w", err)
	}
	return nil
}

// List consulta con filtros dinámicos.
func (r *KardexRepo) List(ctx context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.LotID != "" {
		add("lot_id = $%d", f.LotID)
	}
	if f.LocationID != "" {
		args = append(args, f.LocationID)
		where = append(where, fmt.Sprintf("(origin_location_id = $%d OR destination_location_id = $%d)", len(args), len(args)))
	}
	if f.MovementType != "" {
		add("movement_type = $%d", f.MovementType)
	}
	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at <= $%d", *f.To)
	}

	query := `SELECT ` + kardexColumns + ` FROM kardex_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Descending {
		query += ` ORDER BY seq DESC`
	} else {
		query += ` ORDER BY seq ASC`
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}
	return r.query(ctx, query, args...)
}

// ListForRecord movimientos de un registro en orden de inserción.
func (r *KardexRepo) ListForRecord(ctx context.Context, stockRecordID string) ([]*entity.KardexEntry, error) {
	return r.query(ctx, `SELECT `+kardexColumns+` FROM kardex_entries WHERE stock_record_id = $1 ORDER BY seq`, stockRecordID)
}

func (r *KardexRepo) query(ctx context.Context, query string, args ...any) ([]*entity.KardexEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kardex: %w", err)
	}
	defer rows.Close()

	var out []*entity.KardexEntry
	for rows.Next() {
		var e entity.KardexEntry
		if err := rows.Scan(
			&e.ID, &e.OccurredAt, &e.MovementType, &e.DocumentType, &e.DocumentRef, &e.ProductID, &e.LotID, &e.StockRecordID,
			&e.OriginLocationID, &e.DestinationLocationID, &e.Quantity, &e.ResultingBalance, &e.UserID, &e.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("scan kardex entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
