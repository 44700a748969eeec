package main

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

const sample = "warehouse_id,location_code,product_id,lot_number,expires_at,quantity\n" +
	"W1,A-01,p1,l-100,2027-01-31,40\n" +
	"W1,A-01,p1,L-100,2027-01-31,\"2,5\"\n" +
	"W1,B-02,p2,Z9,2027-06-30,10\n"

func TestParseCSV_Valido(t *testing.T) {
	rows, err := parseCSV([]byte(sample))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Line)
	assert.True(t, rows[1].Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "A-01", rows[0].LocationCode)
}

func TestParseCSV_Latin1(t *testing.T) {
	// "Ñ" en ISO-8859-1 es 0xD1.
	raw := []byte("warehouse_id,location_code,product_id,lot_number,expires_at,quantity\nW1,A-01,p1,LOTE-\xd1,2027-01-31,1\n")
	rows, err := parseCSV(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "LOTE-Ñ", rows[0].LotNumber)
}

func TestParseCSV_Errores(t *testing.T) {
	cases := map[string]string{
		"sin columna":  "warehouse_id,location_code,product_id,lot_number,quantity\nW1,A,p1,L,1\n",
		"fecha":        "warehouse_id,location_code,product_id,lot_number,expires_at,quantity\nW1,A,p1,L,31/01/2027,1\n",
		"cantidad":     "warehouse_id,location_code,product_id,lot_number,expires_at,quantity\nW1,A,p1,L,2027-01-31,0\n",
		"campos vacíos": "warehouse_id,location_code,product_id,lot_number,expires_at,quantity\nW1,,p1,L,2027-01-31,1\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCSV([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestRun_CargaInicialEnMemoria(t *testing.T) {
	rows, err := parseCSV([]byte(sample))
	require.NoError(t, err)

	store := memory.NewStore()
	log := logger.Nop()
	s := &seeder{
		tx:     store,
		lots:   lot.NewUseCase(store, log),
		ledger: stock.NewLedger(store, nil, log),
		userID: "seed",
		log:    log,
	}
	sum := s.run(context.Background(), rows)

	assert.Empty(t, sum.Failed)
	assert.Equal(t, 3, sum.Loaded)
	assert.Equal(t, 2, sum.NewLocations)
	assert.Equal(t, 2, sum.NewLots, "l-100 y L-100 son el mismo lote normalizado")

	entries := store.Kardex()
	require.Len(t, entries, 3)
	assert.Equal(t, entity.MovementInitialEntry, entries[0].MovementType)
	assert.Equal(t, entity.MovementAdjustmentIn, entries[1].MovementType)
	assert.Equal(t, entity.DocumentSeed, entries[0].DocumentType)
	assert.True(t, entries[1].ResultingBalance.Equal(decimal.RequireFromString("42.5")))
}
