// Package lot implementa el registro de lotes: alta en recepción, consulta y cambio de estado de calidad.
package lot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// RegisterInput datos de un lote recibido.
type RegisterInput struct {
	ProductID      string
	LotNumber      string
	ManufacturedAt *time.Time
	ExpiresAt      time.Time
	QualityStatus  string // vacío = LIBERADO
}

// UseCase casos de uso del registro de lotes.
type UseCase struct {
	tx  repository.TxRunner
	log *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx repository.TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, log: log.Component("lot")}
}

// FindLot busca un lote por id.
func (uc *UseCase) FindLot(ctx context.Context, id string) (*entity.Lot, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var lot *entity.Lot
	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		lot, err = r.Lots.GetByID(ctx, id)
		return err
	})
	return lot, err
}

// ListByProduct lotes de un producto por vencimiento ascendente.
func (uc *UseCase) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var lots []*entity.Lot
	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		lots, err = r.Lots.ListByProduct(ctx, productID)
		return err
	})
	return lots, err
}

// Register da de alta un lote. El número se normaliza y debe ser único por producto.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*entity.Lot, error) {
	var lot *entity.Lot
	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		lot, err = uc.RegisterInTx(ctx, r, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", lot.ID).Str("product_id", lot.ProductID).Str("lot_number", lot.LotNumber).Msg("lote registrado")
	return lot, nil
}

// RegisterInTx alta dentro de la transacción del llamador (recepción y carga inicial).
func (uc *UseCase) RegisterInTx(ctx context.Context, r repository.TxRepos, in RegisterInput) (*entity.Lot, error) {
	number := NormalizeLotNumber(in.LotNumber)
	if in.ProductID == "" || number == "" || in.ExpiresAt.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.ManufacturedAt != nil && in.ManufacturedAt.After(in.ExpiresAt) {
		return nil, domain.ErrInvalidInput
	}
	status := in.QualityStatus
	if status == "" {
		status = entity.QualityReleased
	}
	if !validQuality(status) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := r.Lots.FindByNumber(ctx, in.ProductID, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateLot
	}
	lot := &entity.Lot{
		ID:             uuid.New().String(),
		ProductID:      in.ProductID,
		LotNumber:      number,
		ManufacturedAt: in.ManufacturedAt,
		ExpiresAt:      in.ExpiresAt,
		QualityStatus:  status,
		CreatedAt:      time.Now(),
	}
	if err := r.Lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// FindOrRegisterInTx devuelve el lote existente con ese número o lo registra.
func (uc *UseCase) FindOrRegisterInTx(ctx context.Context, r repository.TxRepos, in RegisterInput) (*entity.Lot, error) {
	existing, err := r.Lots.FindByNumber(ctx, in.ProductID, NormalizeLotNumber(in.LotNumber))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return uc.RegisterInTx(ctx, r, in)
}

// SetQualityStatus cambia el estado de calidad (p. ej. liberación de cuarentena).
func (uc *UseCase) SetQualityStatus(ctx context.Context, id, status string) (*entity.Lot, error) {
	if !validQuality(status) {
		return nil, domain.ErrInvalidInput
	}
	var lot *entity.Lot
	err := uc.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		if lot, err = r.Lots.GetByID(ctx, id); err != nil {
			return err
		}
		if lot.QualityStatus == status {
			return nil
		}
		if err := r.Lots.UpdateQualityStatus(ctx, id, status); err != nil {
			return err
		}
		lot.QualityStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", id).Str("quality_status", status).Msg("estado de calidad actualizado")
	return lot, nil
}

var upper = cases.Upper(language.Und)

// NormalizeLotNumber recorta espacios, compone a NFC y pasa a mayúsculas.
func NormalizeLotNumber(s string) string {
	return upper.String(norm.NFC.String(strings.TrimSpace(s)))
}

func validQuality(s string) bool {
	switch s {
	case entity.QualityReleased, entity.QualityQuarantine, entity.QualityRejected:
		return true
	}
	return false
}
