package picking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/picking"
)

func cand(id, lot string, expires time.Time, quality string, physical, reserved int64) entity.StockCandidate {
	return entity.StockCandidate{
		Record:           entity.StockRecord{ID: id, LotID: lot, LocationID: "loc-" + id, PhysicalQty: d(physical), ReservedQty: d(reserved)},
		ProductID:        "p1",
		LotNumber:        lot,
		LotExpiresAt:     expires,
		LotQualityStatus: quality,
	}
}

func TestSuggest_VencimientoMasCercanoPrimero(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cands := []entity.StockCandidate{
		cand("s2", "L2", base.AddDate(0, 6, 0), entity.QualityReleased, 50, 0),
		cand("s1", "L1", base.AddDate(0, 1, 0), entity.QualityReleased, 50, 0),
	}
	got := picking.Suggest(cands, d(10))
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.Record.ID)
}

func TestSuggest_PrefiereCoberturaLiberada(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cands := []entity.StockCandidate{
		cand("s1", "L1", base, entity.QualityReleased, 5, 0),
		cand("s2", "L2", base.AddDate(0, 1, 0), entity.QualityQuarantine, 50, 0),
		cand("s3", "L3", base.AddDate(0, 2, 0), entity.QualityReleased, 50, 10),
	}
	got := picking.Suggest(cands, d(20))
	require.NotNil(t, got)
	assert.Equal(t, "s3", got.Record.ID)
}

func TestSuggest_CaeACualquierDisponible(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cands := []entity.StockCandidate{
		cand("s2", "L2", base.AddDate(0, 1, 0), entity.QualityReleased, 3, 0),
		cand("s1", "L1", base, entity.QualityQuarantine, 2, 0),
	}
	got := picking.Suggest(cands, d(20))
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.Record.ID)
}

func TestSuggest_SinDisponible(t *testing.T) {
	cands := []entity.StockCandidate{cand("s1", "L1", time.Now(), entity.QualityReleased, 5, 5)}
	assert.Nil(t, picking.Suggest(cands, d(1)))
	assert.Nil(t, picking.Suggest(nil, d(1)))
}

func TestSortFEFO_UbicacionCuarentenaAlFinal(t *testing.T) {
	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := cand("s1", "L1", exp, entity.QualityReleased, 1, 0)
	a.LocationQuarantine = true
	b := cand("s2", "L1", exp, entity.QualityReleased, 1, 0)
	cands := []entity.StockCandidate{a, b}
	picking.SortFEFO(cands)
	assert.Equal(t, "s2", cands[0].Record.ID)
}
