package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

const dateLayout = "2006-01-02"

var requiredColumns = []string{"warehouse_id", "location_code", "product_id", "lot_number", "expires_at", "quantity"}

// seedRow fila del CSV ya validada.
type seedRow struct {
	Line           int
	WarehouseID    string
	LocationCode   string
	ProductID      string
	LotNumber      string
	ExpiresAt      time.Time
	ManufacturedAt *time.Time
	QualityStatus  string
	Quantity       decimal.Decimal
}

// parseCSV decodifica el archivo (UTF-8 o Latin-1) y valida columnas y valores.
func parseCSV(raw []byte) ([]seedRow, error) {
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}
	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []seedRow
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := seedRow{
			Line:          line,
			WarehouseID:   get(rec, "warehouse_id"),
			LocationCode:  get(rec, "location_code"),
			ProductID:     get(rec, "product_id"),
			LotNumber:     get(rec, "lot_number"),
			QualityStatus: strings.ToUpper(get(rec, "quality_status")),
		}
		if row.WarehouseID == "" || row.LocationCode == "" || row.ProductID == "" || row.LotNumber == "" {
			return nil, fmt.Errorf("línea %d: campos obligatorios vacíos", line)
		}
		if row.ExpiresAt, err = time.Parse(dateLayout, get(rec, "expires_at")); err != nil {
			return nil, fmt.Errorf("línea %d: expires_at: %w", line, err)
		}
		if s := get(rec, "manufactured_at"); s != "" {
			t, err := time.Parse(dateLayout, s)
			if err != nil {
				return nil, fmt.Errorf("línea %d: manufactured_at: %w", line, err)
			}
			row.ManufacturedAt = &t
		}
		// Se acepta coma decimal.
		qty, err := decimal.NewFromString(strings.ReplaceAll(get(rec, "quantity"), ",", "."))
		if err != nil || !qty.IsPositive() {
			return nil, fmt.Errorf("línea %d: quantity debe ser positiva", line)
		}
		row.Quantity = qty
		rows = append(rows, row)
	}
	return rows, nil
}

// summary resultado de la carga.
type summary struct {
	Loaded       int
	NewLocations int
	NewLots      int
	Failed       map[int]error // por número de línea
}

type seeder struct {
	tx     repository.TxRunner
	lots   *lot.UseCase
	ledger *stock.Ledger
	userID string
	log    *logger.Logger
}

// run carga fila por fila, cada una en su transacción. Una fila fallida no detiene el resto.
func (s *seeder) run(ctx context.Context, rows []seedRow) summary {
	sum := summary{Failed: make(map[int]error)}
	for _, row := range rows {
		var (
			entry  *entity.KardexEntry
			newLoc bool
			newLot bool
		)
		err := s.tx.Run(ctx, func(r repository.TxRepos) error {
			loc, created, err := ensureLocation(ctx, r, row.WarehouseID, row.LocationCode)
			if err != nil {
				return err
			}
			newLoc = created
			existing, err := r.Lots.FindByNumber(ctx, row.ProductID, lot.NormalizeLotNumber(row.LotNumber))
			if err != nil {
				return err
			}
			newLot = existing == nil
			l, err := s.lots.FindOrRegisterInTx(ctx, r, lot.RegisterInput{
				ProductID:      row.ProductID,
				LotNumber:      row.LotNumber,
				ManufacturedAt: row.ManufacturedAt,
				ExpiresAt:      row.ExpiresAt,
				QualityStatus:  row.QualityStatus,
			})
			if err != nil {
				return err
			}
			entry, err = s.ledger.AdjustPhysicalInTx(ctx, r, loc.ID, l.ID, row.Quantity, stock.Movement{
				UserID:       s.userID,
				DocumentType: entity.DocumentSeed,
				DocumentRef:  fmt.Sprintf("linea-%d", row.Line),
			})
			return err
		})
		if err != nil {
			s.log.Error().Err(err).Int("linea", row.Line).Str("lote", row.LotNumber).Msg("fila rechazada")
			sum.Failed[row.Line] = err
			continue
		}
		s.ledger.Publish(ctx, entry)
		sum.Loaded++
		if newLoc {
			sum.NewLocations++
		}
		if newLot {
			sum.NewLots++
		}
	}
	return sum
}

func ensureLocation(ctx context.Context, r repository.TxRepos, warehouseID, code string) (*entity.Location, bool, error) {
	loc, err := r.Locations.GetByCode(ctx, warehouseID, code)
	if err == nil {
		return loc, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	loc = &entity.Location{WarehouseID: warehouseID, Code: code}
	if err := r.Locations.Create(ctx, loc); err != nil {
		return nil, false, err
	}
	return loc, true, nil
}
