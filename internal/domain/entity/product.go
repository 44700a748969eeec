package entity

// Product vista de catálogo de un producto. El catálogo es externo;
// aquí solo se usa para enriquecer respuestas de lectura.
type Product struct {
	ID   string
	Name string
	SKU  string
	Unit string
}
