package picking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// SortFEFO ordena candidatos: vencimiento ascendente, ubicaciones fuera de cuarentena
// primero y, para empates, número de lote e id de registro (orden estable y determinista).
func SortFEFO(cands []entity.StockCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if !a.LotExpiresAt.Equal(b.LotExpiresAt) {
			return a.LotExpiresAt.Before(b.LotExpiresAt)
		}
		if a.LocationQuarantine != b.LocationQuarantine {
			return !a.LocationQuarantine
		}
		if a.LotNumber != b.LotNumber {
			return a.LotNumber < b.LotNumber
		}
		return a.Record.ID < b.Record.ID
	})
}

// Suggest elige el origen para needed unidades entre los candidatos del producto:
//  1. lote LIBERADO con disponible >= needed (cobertura total, FEFO);
//  2. cualquier registro con disponible > 0, sin importar el estado de calidad;
//  3. nil si no hay nada.
func Suggest(cands []entity.StockCandidate, needed decimal.Decimal) *entity.StockCandidate {
	sorted := make([]entity.StockCandidate, len(cands))
	copy(sorted, cands)
	SortFEFO(sorted)

	for i := range sorted {
		c := &sorted[i]
		if c.LotQualityStatus == entity.QualityReleased && c.Record.Available().GreaterThanOrEqual(needed) {
			return c
		}
	}
	for i := range sorted {
		c := &sorted[i]
		if c.Record.Available().IsPositive() {
			return c
		}
	}
	return nil
}
