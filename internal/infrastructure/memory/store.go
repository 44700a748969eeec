// Package memory implementa los puertos de repositorio en memoria con semántica transaccional:
// cada Run trabaja sobre una copia del estado y sólo la publica si fn termina sin error.
// Las transacciones se serializan, lo que equivale a bloquear todas las filas que tocan.
// Se usa en pruebas y en el modo demo del seed.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// Store base de datos en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn sobre una copia del estado. Error = rollback.
func (s *Store) Run(ctx context.Context, fn func(r repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(work.repos()); err != nil {
		return err
	}
	s.data = work
	return nil
}

// ── Helpers de carga y lectura para pruebas ─────────────────────────────────

// AddLocation registra una ubicación.
func (s *Store) AddLocation(loc entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.locations[loc.ID] = loc
}

// AddLot registra un lote.
func (s *Store) AddLot(lot entity.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.lots[lot.ID] = lot
}

// PutStock inserta o reemplaza un registro de stock.
func (s *Store) PutStock(rec entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[rec.ID] = rec
}

// Stock devuelve una copia del registro o false si no existe.
func (s *Store) Stock(id string) (entity.StockRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data.stock[id]
	return rec, ok
}

// StockAt busca el registro de (ubicación, lote).
func (s *Store) StockAt(locationID, lotID string) (entity.StockRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.data.stock {
		if rec.LocationID == locationID && rec.LotID == lotID {
			return rec, true
		}
	}
	return entity.StockRecord{}, false
}

// Kardex devuelve todos los movimientos en orden de inserción.
func (s *Store) Kardex() []entity.KardexEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.KardexEntry, len(s.data.kardex))
	copy(out, s.data.kardex)
	return out
}

// Reservation devuelve una copia de la reserva.
func (s *Store) Reservation(id string) (entity.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.reservations[id]
	if !ok {
		return entity.Reservation{}, false
	}
	return cloneReservation(r), true
}

// ── Estado ──────────────────────────────────────────────────────────────────

type state struct {
	lots         map[string]entity.Lot
	locations    map[string]entity.Location
	stock        map[string]entity.StockRecord
	kardex       []entity.KardexEntry
	reservations map[string]entity.Reservation
	orders       map[string]entity.PickingOrder
	items        map[string]entity.PickingItem
	itemSeq      map[string]int
	seq          int
}

func newState() *state {
	return &state{
		lots:         make(map[string]entity.Lot),
		locations:    make(map[string]entity.Location),
		stock:        make(map[string]entity.StockRecord),
		reservations: make(map[string]entity.Reservation),
		orders:       make(map[string]entity.PickingOrder),
		items:        make(map[string]entity.PickingItem),
		itemSeq:      make(map[string]int),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.kardex = append(c.kardex, s.kardex...)
	for k, v := range s.reservations {
		c.reservations[k] = cloneReservation(v)
	}
	for k, v := range s.orders {
		v.Items = nil
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.itemSeq {
		c.itemSeq[k] = v
	}
	c.seq = s.seq
	return c
}

func (s *state) repos() repository.TxRepos {
	return repository.TxRepos{
		Lots:         &lotRepo{s},
		Locations:    &locationRepo{s},
		Stock:        &stockRepo{s},
		Kardex:       &kardexRepo{s},
		Reservations: &reservationRepo{s},
		Picking:      &pickingRepo{s},
	}
}

func cloneReservation(r entity.Reservation) entity.Reservation {
	items := make([]entity.ReservationItem, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	return r
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// ── Lotes y ubicaciones ─────────────────────────────────────────────────────

type lotRepo struct{ s *state }

func (r *lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	for _, l := range r.s.lots {
		if l.ProductID == lot.ProductID && l.LotNumber == lot.LotNumber {
			return domain.ErrDuplicateLot
		}
	}
	lot.ID = newID(lot.ID)
	r.s.lots[lot.ID] = *lot
	return nil
}

func (r *lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *lotRepo) FindByNumber(_ context.Context, productID, lotNumber string) (*entity.Lot, error) {
	for _, l := range r.s.lots {
		if l.ProductID == productID && l.LotNumber == lotNumber {
			out := l
			return &out, nil
		}
	}
	return nil, nil
}

func (r *lotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			cp := l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (r *lotRepo) UpdateQualityStatus(_ context.Context, id, status string) error {
	l, ok := r.s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.QualityStatus = status
	r.s.lots[id] = l
	return nil
}

type locationRepo struct{ s *state }

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	l, ok := r.s.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *locationRepo) GetByCode(_ context.Context, warehouseID, code string) (*entity.Location, error) {
	for _, l := range r.s.locations {
		if l.WarehouseID == warehouseID && l.Code == code {
			out := l
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *locationRepo) Create(_ context.Context, loc *entity.Location) error {
	loc.ID = newID(loc.ID)
	r.s.locations[loc.ID] = *loc
	return nil
}
