package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

var tracer = otel.Tracer("almacen/postgres")

var errLockTimeout = fmt.Errorf("%w: registro bloqueado por otra operación, reintente", domain.ErrConflict)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	ctx, span := tracer.Start(ctx, "postgres.tx")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin")
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTxRepos(tx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollback")
		if isLockTimeout(err) {
			return errLockTimeout
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewTxRepos arma los repositorios sobre q (pool o tx).
func NewTxRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Lots:         NewLotRepository(q),
		Locations:    NewLocationRepository(q),
		Stock:        NewStockRecordRepository(q),
		Kardex:       NewKardexRepository(q),
		Reservations: NewReservationRepository(q),
		Picking:      NewPickingRepository(q),
	}
}
