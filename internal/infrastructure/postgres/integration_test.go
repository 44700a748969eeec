//go:build integration

package postgres_test

// Pruebas contra PostgreSQL real (testcontainers). Ejecutar con:
//   go test -tags integration ./internal/infrastructure/postgres/... -v

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/Almacen-api/internal/application/kardex"
	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/picking"
	"github.com/jhoicas/Almacen-api/internal/application/reservation"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ── Entorno ─────────────────────────────────────────────────────────────────

type env struct {
	pool     *pgxpool.Pool
	tx       *postgres.TxRunner
	ledger   *stock.Ledger
	lots     *lot.UseCase
	location string
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("almacen_test"),
		tcPostgres.WithUsername("almacen"),
		tcPostgres.WithPassword("almacen"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	loc := entity.Location{ID: uuid.NewString(), WarehouseID: uuid.NewString(), Code: "A-01"}
	require.NoError(t, postgres.NewLocationRepository(pool).Create(ctx, &loc))

	tx := postgres.NewTxRunner(pool)
	log := logger.Nop()
	return &env{
		pool:     pool,
		tx:       tx,
		ledger:   stock.NewLedger(tx, nil, log),
		lots:     lot.NewUseCase(tx, log),
		location: loc.ID,
	}
}

func (e *env) lotWithStock(t *testing.T, productID, number string, expires time.Time, qty int64) *entity.Lot {
	t.Helper()
	ctx := context.Background()
	l, err := e.lots.Register(ctx, lot.RegisterInput{ProductID: productID, LotNumber: number, ExpiresAt: expires})
	require.NoError(t, err)
	_, err = e.ledger.AdjustPhysical(ctx, e.location, l.ID, decimal.NewFromInt(qty),
		stock.Movement{UserID: "seed", DocumentType: entity.DocumentSeed, DocumentRef: "it"})
	require.NoError(t, err)
	return l
}

// ── Pruebas ─────────────────────────────────────────────────────────────────

func TestLedger_AjusteYKardexReproducible(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	product := uuid.NewString()
	l := e.lotWithStock(t, product, "it-1", time.Now().AddDate(1, 0, 0), 50)

	_, err := e.ledger.AdjustPhysical(ctx, e.location, l.ID, decimal.NewFromInt(-20),
		stock.Movement{UserID: "u1", DocumentType: entity.DocumentAdjustment, DocumentRef: "AJ-1"})
	require.NoError(t, err)

	_, err = e.ledger.AdjustPhysical(ctx, e.location, l.ID, decimal.NewFromInt(-31),
		stock.Movement{UserID: "u1", DocumentType: entity.DocumentAdjustment, DocumentRef: "AJ-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	res, err := kardex.NewService(e.tx).Replay(ctx, e.location, l.ID)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.True(t, decimal.NewFromInt(30).Equal(res.Replayed))

	entries, err := kardex.NewService(e.tx).List(ctx, repository.KardexFilter{LotID: l.ID, Descending: true})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.MovementAdjustmentOut, entries[0].MovementType)
	assert.Equal(t, entity.MovementInitialEntry, entries[1].MovementType)
}

func TestKardex_NoPermiteModificar(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.lotWithStock(t, uuid.NewString(), "it-2", time.Now().AddDate(1, 0, 0), 5)

	_, err := e.pool.Exec(ctx, `UPDATE kardex_entries SET quantity = 1`)
	assert.Error(t, err)
	_, err = e.pool.Exec(ctx, `DELETE FROM kardex_entries`)
	assert.Error(t, err)
}

func TestReservation_ConcurrenciaNoSobrevende(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	product := uuid.NewString()
	e.lotWithStock(t, product, "it-3", time.Now().AddDate(1, 0, 0), 10)
	uc := reservation.NewUseCase(e.tx, logger.Nop())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Create(ctx, reservation.CreateInput{
				ExternalRef: uuid.NewString(),
				Items:       []reservation.ItemInput{{ProductID: product, Quantity: decimal.NewFromInt(3)}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrConflict):
				fail++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 5, fail)

	recs, err := e.ledger.ListByProduct(ctx, product)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, decimal.NewFromInt(9).Equal(recs[0].Record.ReservedQty))
}

func TestPicking_FlujoCompleto(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	product := uuid.NewString()
	first := e.lotWithStock(t, product, "it-4a", time.Now().AddDate(0, 3, 0), 10)
	second := e.lotWithStock(t, product, "it-4b", time.Now().AddDate(0, 9, 0), 10)

	eng := picking.NewEngine(e.tx, e.ledger, nil, nil, nil, nil, logger.Nop())
	o, err := eng.Create(ctx, picking.CreateInput{
		SourceOrderID: "ORD-IT-1",
		Items:         []picking.CreateItem{{ProductID: product, Quantity: decimal.NewFromInt(6)}},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, first.ID, *o.Items[0].SuggestedLotID)

	_, err = eng.Create(ctx, picking.CreateInput{
		SourceOrderID: "ORD-IT-1",
		Items:         []picking.CreateItem{{ProductID: product, Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePicking)

	_, err = eng.Assign(ctx, o.ID, "w1")
	require.NoError(t, err)
	_, err = eng.Start(ctx, o.ID, "w1")
	require.NoError(t, err)

	// 4 del lote sugerido y 2 del segundo lote (línea hermana).
	_, err = eng.RecordPick(ctx, picking.PickInput{OrderID: o.ID, ItemID: o.Items[0].ID, Quantity: decimal.NewFromInt(4)})
	require.NoError(t, err)
	res, err := eng.RecordPick(ctx, picking.PickInput{
		OrderID: o.ID, ItemID: o.Items[0].ID, Quantity: decimal.NewFromInt(2),
		ConfirmedLotID: second.ID, DeviationReason: "lote dañado",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Sibling)

	done, err := eng.Complete(ctx, o.ID, "w1")
	require.NoError(t, err)
	assert.Equal(t, entity.PickingCompleted, done.State)

	a, err := e.ledger.Get(ctx, e.location, first.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6).Equal(a.PhysicalQty))
	assert.True(t, a.ReservedQty.IsZero())

	b, err := e.ledger.Get(ctx, e.location, second.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(8).Equal(b.PhysicalQty))

	// La orden cancelada libera la orden de origen.
	o2, err := eng.Create(ctx, picking.CreateInput{
		SourceOrderID: "ORD-IT-2",
		Items:         []picking.CreateItem{{ProductID: product, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	require.NoError(t, eng.Cancel(ctx, o2.ID))
	_, err = eng.Create(ctx, picking.CreateInput{
		SourceOrderID: "ORD-IT-2",
		Items:         []picking.CreateItem{{ProductID: product, Quantity: decimal.NewFromInt(1)}},
	})
	assert.NoError(t, err)
}
