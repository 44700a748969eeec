package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, lot_number, manufactured_at, expires_at, quality_status, created_at`

func scanLot(row interface{ Scan(...any) error }) (*entity.Lot, error) {
	var l entity.Lot
	if err := row.Scan(&l.ID, &l.ProductID, &l.LotNumber, &l.ManufacturedAt, &l.ExpiresAt, &l.QualityStatus, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote. Número duplicado para el producto = ErrDuplicateLot.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.ManufacturedAt, lot.ExpiresAt, lot.QualityStatus, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateLot
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// FindByNumber busca por producto y número de lote.
func (r *LotRepo) FindByNumber(ctx context.Context, productID, lotNumber string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 AND lot_number = $2`
	l, err := scanLot(r.q.QueryRow(ctx, query, productID, lotNumber))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lot by number: %w", err)
	}
	return l, nil
}

// ListByProduct lotes del producto por vencimiento ascendente.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 ORDER BY expires_at, lot_number`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var out []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateQualityStatus cambia el estado de calidad.
func (r *LotRepo) UpdateQualityStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE lots SET quality_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update lot quality: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
