package entity

// User vista del directorio de usuarios (operarios de bodega), solo para enriquecer lecturas.
type User struct {
	ID       string
	FullName string
}
