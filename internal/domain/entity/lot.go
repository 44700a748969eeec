package entity

import "time"

// Estados de calidad de un lote.
const (
	QualityReleased   = "LIBERADO"
	QualityQuarantine = "CUARENTENA"
	QualityRejected   = "RECHAZADO"
)

// Lot representa un lote fabricado de un producto (vencimiento y estado de calidad propios).
// Se crea en la recepción; nunca se elimina, solo se referencia.
type Lot struct {
	ID             string
	ProductID      string
	LotNumber      string // único por producto
	ManufacturedAt *time.Time
	ExpiresAt      time.Time
	QualityStatus  string
	CreatedAt      time.Time
}

// Released indica si el lote está liberado por calidad.
func (l *Lot) Released() bool {
	return l.QualityStatus == QualityReleased
}
