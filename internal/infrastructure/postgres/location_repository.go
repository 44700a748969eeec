package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo lectura de ubicaciones.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByID obtiene una ubicación.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, warehouse_id, code, quarantine FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.WarehouseID, &l.Code, &l.Quarantine)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// GetByCode obtiene una ubicación por bodega y código.
func (r *LocationRepo) GetByCode(ctx context.Context, warehouseID, code string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, warehouse_id, code, quarantine FROM locations WHERE warehouse_id = $1 AND code = $2`, warehouseID, code).
		Scan(&l.ID, &l.WarehouseID, &l.Code, &l.Quarantine)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get location by code: %w", err)
	}
	return &l, nil
}

// Create inserta una ubicación (usado por la carga inicial).
func (r *LocationRepo) Create(ctx context.Context, loc *entity.Location) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO locations (id, warehouse_id, code, quarantine) VALUES ($1, $2, $3, $4)`,
		loc.ID, loc.WarehouseID, loc.Code, loc.Quarantine)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ubicación %s ya existe", domain.ErrConflict, loc.Code)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}
