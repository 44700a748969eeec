package kardex_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/kardex"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seeded(t *testing.T) (*memory.Store, *kardex.Service) {
	t.Helper()
	store := memory.NewStore()
	store.AddLocation(entity.Location{ID: "A", WarehouseID: "W1", Code: "A-01"})
	store.AddLocation(entity.Location{ID: "B", WarehouseID: "W1", Code: "B-01"})
	store.AddLot(entity.Lot{ID: "L1", ProductID: "p1", LotNumber: "L-001", ExpiresAt: time.Now().AddDate(1, 0, 0), QualityStatus: entity.QualityReleased})

	ledger := stock.NewLedger(store, nil, logger.Nop())
	ctx := context.Background()
	mv := stock.Movement{UserID: "u1", DocumentType: entity.DocumentAdjustment, DocumentRef: "ADJ"}
	_, err := ledger.AdjustPhysical(ctx, "A", "L1", d(10), mv)
	require.NoError(t, err)
	_, err = ledger.AdjustPhysical(ctx, "B", "L1", d(4), mv)
	require.NoError(t, err)
	_, err = ledger.AdjustPhysical(ctx, "A", "L1", d(-2), mv)
	require.NoError(t, err)
	return store, kardex.NewService(store)
}

func TestList_Filtros(t *testing.T) {
	_, svc := seeded(t)
	ctx := context.Background()

	all, err := svc.List(ctx, repository.KardexFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byLoc, err := svc.List(ctx, repository.KardexFilter{LocationID: "A"})
	require.NoError(t, err)
	assert.Len(t, byLoc, 2)

	outs, err := svc.List(ctx, repository.KardexFilter{MovementType: entity.MovementAdjustmentOut})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Quantity.Equal(d(2)))

	desc, err := svc.List(ctx, repository.KardexFilter{Descending: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal(t, entity.MovementAdjustmentOut, desc[0].MovementType)
}

func TestList_ValidaFiltros(t *testing.T) {
	_, svc := seeded(t)
	_, err := svc.List(context.Background(), repository.KardexFilter{MovementType: "TRASLADO"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = svc.List(context.Background(), repository.KardexFilter{From: &from, To: &to})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestReplay_SinRegistro(t *testing.T) {
	_, svc := seeded(t)
	_, err := svc.Replay(context.Background(), "B", "L9")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBalance_DetectaDescuadre(t *testing.T) {
	entries := []*entity.KardexEntry{
		{ID: "k1", MovementType: entity.MovementInitialEntry, Quantity: d(10), ResultingBalance: d(10)},
		{ID: "k2", MovementType: entity.MovementPickingOut, Quantity: d(3), ResultingBalance: d(6)},
	}
	bal, broken := kardex.Balance(entries)
	assert.True(t, bal.Equal(d(7)))
	assert.Equal(t, "k2", broken)
}
