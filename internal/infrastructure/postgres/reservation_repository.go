package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo reservas y sus ítems sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create inserta la cabecera y los ítems. Debe llamarse dentro de una transacción.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO reservations (id, external_ref, status, created_at, cancelled_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.ExternalRef, res.Status, res.CreatedAt, res.CancelledAt, res.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	for i := range res.Items {
		it := &res.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReservationID = res.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO reservation_items (id, reservation_id, product_id, sku, quantity, stock_record_id, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.ReservationID, it.ProductID, it.SKU, it.Quantity, it.StockRecordID, i)
		if err != nil {
			return fmt.Errorf("insert reservation item: %w", err)
		}
	}
	return nil
}

func (r *ReservationRepo) get(ctx context.Context, query, id string) (*entity.Reservation, error) {
	var res entity.Reservation
	err := r.q.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.ExternalRef, &res.Status, &res.CreatedAt, &res.CancelledAt, &res.ConfirmedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, reservation_id, product_id, sku, quantity, stock_record_id
		FROM reservation_items WHERE reservation_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list reservation items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReservationItem
		if err := rows.Scan(&it.ID, &it.ReservationID, &it.ProductID, &it.SKU, &it.Quantity, &it.StockRecordID); err != nil {
			return nil, fmt.Errorf("scan reservation item: %w", err)
		}
		res.Items = append(res.Items, it)
	}
	return &res, rows.Err()
}

// GetByID obtiene la reserva con sus ítems.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, `
		SELECT id, external_ref, status, created_at, cancelled_at, confirmed_at
		FROM reservations WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID bloqueando la cabecera.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, `
		SELECT id, external_ref, status, created_at, cancelled_at, confirmed_at
		FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus persiste estado y marcas de tiempo.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, res *entity.Reservation) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE reservations SET status = $2, cancelled_at = $3, confirmed_at = $4 WHERE id = $1`,
		res.ID, res.Status, res.CancelledAt, res.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
