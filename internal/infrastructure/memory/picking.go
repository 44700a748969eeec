package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ── Reservas ────────────────────────────────────────────────────────────────

type reservationRepo struct{ s *state }

func (r *reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	res.ID = newID(res.ID)
	for i := range res.Items {
		res.Items[i].ID = newID(res.Items[i].ID)
		res.Items[i].ReservationID = res.ID
	}
	r.s.reservations[res.ID] = cloneReservation(*res)
	return nil
}

func (r *reservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneReservation(res)
	return &out, nil
}

func (r *reservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *reservationRepo) UpdateStatus(_ context.Context, res *entity.Reservation) error {
	cur, ok := r.s.reservations[res.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = res.Status
	cur.CancelledAt = res.CancelledAt
	cur.ConfirmedAt = res.ConfirmedAt
	r.s.reservations[res.ID] = cur
	return nil
}

// ── Picking ─────────────────────────────────────────────────────────────────

type pickingRepo struct{ s *state }

func (r *pickingRepo) Create(ctx context.Context, o *entity.PickingOrder) error {
	for _, cur := range r.s.orders {
		if cur.SourceOrderID == o.SourceOrderID && cur.DeletedAt == nil {
			return domain.ErrDuplicatePicking
		}
	}
	o.ID = newID(o.ID)
	head := *o
	head.Items = nil
	r.s.orders[o.ID] = head
	for i := range o.Items {
		o.Items[i].PickingOrderID = o.ID
		if err := r.CreateItem(ctx, &o.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *pickingRepo) load(id string) (*entity.PickingOrder, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var ids []string
	for itemID, it := range r.s.items {
		if it.PickingOrderID == id {
			ids = append(ids, itemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return r.s.itemSeq[ids[i]] < r.s.itemSeq[ids[j]] })
	o.Items = make([]entity.PickingItem, 0, len(ids))
	for _, itemID := range ids {
		o.Items = append(o.Items, r.s.items[itemID])
	}
	return &o, nil
}

func (r *pickingRepo) GetByID(_ context.Context, id string) (*entity.PickingOrder, error) {
	return r.load(id)
}

func (r *pickingRepo) GetForUpdate(_ context.Context, id string) (*entity.PickingOrder, error) {
	return r.load(id)
}

func (r *pickingRepo) GetBySourceOrder(_ context.Context, sourceOrderID string) (*entity.PickingOrder, error) {
	for id, o := range r.s.orders {
		if o.SourceOrderID == sourceOrderID && o.DeletedAt == nil {
			return r.load(id)
		}
	}
	return nil, nil
}

func (r *pickingRepo) List(_ context.Context, f repository.PickingFilter) ([]*entity.PickingOrder, int, error) {
	var out []*entity.PickingOrder
	for id, o := range r.s.orders {
		if o.DeletedAt != nil && !f.IncludeCancelled {
			continue
		}
		if f.State != "" && o.State != f.State {
			continue
		}
		if f.AssignedTo != "" && (o.AssignedTo == nil || *o.AssignedTo != f.AssignedTo) {
			continue
		}
		full, _ := r.load(id)
		out = append(out, full)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, total, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *pickingRepo) UpdateOrder(_ context.Context, o *entity.PickingOrder) error {
	if _, ok := r.s.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	head := *o
	head.Items = nil
	r.s.orders[o.ID] = head
	return nil
}

func (r *pickingRepo) CreateItem(_ context.Context, item *entity.PickingItem) error {
	item.ID = newID(item.ID)
	r.s.seq++
	r.s.itemSeq[item.ID] = r.s.seq
	r.s.items[item.ID] = *item
	return nil
}

func (r *pickingRepo) UpdateItem(_ context.Context, item *entity.PickingItem) error {
	if _, ok := r.s.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[item.ID] = *item
	return nil
}
