package entity

// Location representa una ubicación física dentro de una bodega.
// Quarantine marca ubicaciones que guardan mercancía retenida por calidad.
type Location struct {
	ID          string
	WarehouseID string
	Code        string
	Quarantine  bool
}
