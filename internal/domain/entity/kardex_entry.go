package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementInitialEntry  = "ENTRADA_INICIAL"
	MovementAdjustmentIn  = "ENTRADA_AJUSTE"
	MovementAdjustmentOut = "SALIDA_AJUSTE"
	MovementPickingOut    = "SALIDA_PICKING"
	MovementReturnIn      = "ENTRADA_DEVOLUCION"
)

// Tipos de documento que originan movimientos.
const (
	DocumentAdjustment = "AJUSTE"
	DocumentPicking    = "PICKING"
	DocumentReturn     = "DEVOLUCION"
	DocumentSeed       = "CARGA_INICIAL"
)

// KardexEntry registro inmutable de un movimiento de inventario.
// Quantity siempre es positiva; el sentido lo da MovementType.
// ResultingBalance es la cantidad física del StockRecord después del movimiento.
type KardexEntry struct {
	ID                    string
	OccurredAt            time.Time
	MovementType          string
	DocumentType          string
	DocumentRef           string
	ProductID             string
	LotID                 string
	StockRecordID         string
	OriginLocationID      *string
	DestinationLocationID *string
	Quantity              decimal.Decimal
	ResultingBalance      decimal.Decimal
	UserID                string
	UnitCost              *decimal.Decimal
}

// IsInbound indica si el movimiento suma existencias.
func (k *KardexEntry) IsInbound() bool {
	switch k.MovementType {
	case MovementInitialEntry, MovementAdjustmentIn, MovementReturnIn:
		return true
	}
	return false
}

// SignedQuantity cantidad con signo según el sentido del movimiento.
func (k *KardexEntry) SignedQuantity() decimal.Decimal {
	if k.IsInbound() {
		return k.Quantity
	}
	return k.Quantity.Neg()
}

// LocationID ubicación afectada (destino en entradas, origen en salidas).
func (k *KardexEntry) LocationID() string {
	if k.IsInbound() && k.DestinationLocationID != nil {
		return *k.DestinationLocationID
	}
	if k.OriginLocationID != nil {
		return *k.OriginLocationID
	}
	return ""
}
