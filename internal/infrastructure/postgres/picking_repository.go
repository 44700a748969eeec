package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.PickingRepository = (*PickingRepo)(nil)

// PickingRepo órdenes de picking y sus líneas sobre PostgreSQL.
type PickingRepo struct {
	q Querier
}

// NewPickingRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPickingRepository(q Querier) *PickingRepo {
	return &PickingRepo{q: q}
}

const orderColumns = `id, source_order_id, reservation_id, assigned_to, priority, state,
	started_at, finished_at, deleted_at, created_at, updated_at`

const itemColumns = `id, picking_order_id, parent_item_id, product_id, requested_qty,
	suggested_stock_record_id, suggested_location_id, suggested_lot_id, reserved_qty, picked_qty,
	confirmed_lot_id, confirmed_location_id, line_state, deviation_reason, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.PickingOrder, error) {
	var o entity.PickingOrder
	err := row.Scan(&o.ID, &o.SourceOrderID, &o.ReservationID, &o.AssignedTo, &o.Priority, &o.State,
		&o.StartedAt, &o.FinishedAt, &o.DeletedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta la orden y sus líneas. Otra orden vigente para la misma orden de origen = ErrDuplicatePicking.
func (r *PickingRepo) Create(ctx context.Context, o *entity.PickingOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO picking_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.SourceOrderID, o.ReservationID, o.AssignedTo, o.Priority, o.State,
		o.StartedAt, o.FinishedAt, o.DeletedAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicatePicking
		}
		return fmt.Errorf("insert picking order: %w", err)
	}
	for i := range o.Items {
		o.Items[i].PickingOrderID = o.ID
		if err := r.CreateItem(ctx, &o.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PickingRepo) load(ctx context.Context, query string, args ...any) (*entity.PickingOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get picking order: %w", err)
	}
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *PickingRepo) items(ctx context.Context, orderID string) ([]entity.PickingItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM picking_items WHERE picking_order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list picking items: %w", err)
	}
	defer rows.Close()

	var out []entity.PickingItem
	for rows.Next() {
		var it entity.PickingItem
		if err := rows.Scan(
			&it.ID, &it.PickingOrderID, &it.ParentItemID, &it.ProductID, &it.RequestedQty,
			&it.SuggestedStockRecordID, &it.SuggestedLocationID, &it.SuggestedLotID, &it.ReservedQty, &it.PickedQty,
			&it.ConfirmedLotID, &it.ConfirmedLocationID, &it.LineState, &it.DeviationReason, &it.Notes, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan picking item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetByID obtiene la orden con sus líneas, incluida una cancelada.
func (r *PickingRepo) GetByID(ctx context.Context, id string) (*entity.PickingOrder, error) {
	return r.load(ctx, `SELECT `+orderColumns+` FROM picking_orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la orden. Las líneas se leen sin bloqueo: toda escritura pasa por la orden.
func (r *PickingRepo) GetForUpdate(ctx context.Context, id string) (*entity.PickingOrder, error) {
	return r.load(ctx, `SELECT `+orderColumns+` FROM picking_orders WHERE id = $1 FOR UPDATE`, id)
}

// GetBySourceOrder orden vigente de la orden de origen, o nil.
func (r *PickingRepo) GetBySourceOrder(ctx context.Context, sourceOrderID string) (*entity.PickingOrder, error) {
	o, err := r.load(ctx, `SELECT `+orderColumns+` FROM picking_orders
		WHERE source_order_id = $1 AND deleted_at IS NULL`, sourceOrderID)
	if err == domain.ErrNotFound {
		return nil, nil
	}
	return o, err
}

// List órdenes por prioridad descendente y antigüedad. Devuelve también el total sin paginar.
func (r *PickingRepo) List(ctx context.Context, f repository.PickingFilter) ([]*entity.PickingOrder, int, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeCancelled {
		where = append(where, "deleted_at IS NULL")
	}
	if f.State != "" {
		args = append(args, f.State)
		where = append(where, fmt.Sprintf("state = $%d", len(args)))
	}
	if f.AssignedTo != "" {
		args = append(args, f.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM picking_orders`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count picking orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM picking_orders` + cond + ` ORDER BY priority DESC, created_at ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list picking orders: %w", err)
	}
	var out []*entity.PickingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan picking order: %w", err)
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list picking orders: %w", err)
	}

	for _, o := range out {
		if o.Items, err = r.items(ctx, o.ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// UpdateOrder persiste la cabecera (no las líneas).
func (r *PickingRepo) UpdateOrder(ctx context.Context, o *entity.PickingOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE picking_orders
		SET assigned_to = $2, priority = $3, state = $4, started_at = $5, finished_at = $6, deleted_at = $7, updated_at = $8
		WHERE id = $1`,
		o.ID, o.AssignedTo, o.Priority, o.State, o.StartedAt, o.FinishedAt, o.DeletedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update picking order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateItem inserta una línea.
func (r *PickingRepo) CreateItem(ctx context.Context, it *entity.PickingItem) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO picking_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		it.ID, it.PickingOrderID, it.ParentItemID, it.ProductID, it.RequestedQty,
		it.SuggestedStockRecordID, it.SuggestedLocationID, it.SuggestedLotID, it.ReservedQty, it.PickedQty,
		it.ConfirmedLotID, it.ConfirmedLocationID, it.LineState, it.DeviationReason, it.Notes, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert picking item: %w", err)
	}
	return nil
}

// UpdateItem persiste cantidades, confirmación y estado de la línea.
func (r *PickingRepo) UpdateItem(ctx context.Context, it *entity.PickingItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE picking_items
		SET requested_qty = $2, reserved_qty = $3, picked_qty = $4, confirmed_lot_id = $5, confirmed_location_id = $6,
		    line_state = $7, deviation_reason = $8, notes = $9, updated_at = $10
		WHERE id = $1`,
		it.ID, it.RequestedQty, it.ReservedQty, it.PickedQty, it.ConfirmedLotID, it.ConfirmedLocationID,
		it.LineState, it.DeviationReason, it.Notes, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update picking item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
