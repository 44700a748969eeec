package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Lots         LotRepository
	Locations    LocationRepository
	Stock        StockRecordRepository
	Kardex       KardexRepository
	Reservations ReservationRepository
	Picking      PickingRepository
}

// TxRunner ejecuta fn dentro de una transacción. Si fn devuelve error se hace rollback
// y ninguna escritura queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
