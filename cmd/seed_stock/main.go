// seed_stock carga existencias iniciales desde un CSV a través del libro de existencias.
// Cada fila registra (si no existe) la ubicación y el lote, y genera una ENTRADA_INICIAL en el kárdex.
//
// Uso: go run ./cmd/seed_stock [-dry-run] [-user seed] ruta/stock.csv
//
// Columnas (con encabezado): warehouse_id, location_code, product_id, lot_number, expires_at,
// quantity y opcionalmente manufactured_at y quality_status. Fechas en formato YYYY-MM-DD.
// El archivo puede venir en UTF-8 o ISO-8859-1.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "validar contra almacenamiento en memoria sin tocar la base de datos")
	userID := flag.String("user", "seed", "usuario que firma los movimientos")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_stock [-dry-run] [-user id] ruta/stock.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_stock"})

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	rows, err := parseCSV(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	var tx repository.TxRunner
	if *dryRun {
		tx = memory.NewStore()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		tx = postgres.NewTxRunner(pool)
	}

	s := &seeder{
		tx:     tx,
		lots:   lot.NewUseCase(tx, log),
		ledger: stock.NewLedger(tx, nil, log),
		userID: *userID,
		log:    log,
	}
	sum := s.run(ctx, rows)
	log.Info().
		Bool("dry_run", *dryRun).
		Int("filas", len(rows)).
		Int("cargadas", sum.Loaded).
		Int("ubicaciones_nuevas", sum.NewLocations).
		Int("lotes_nuevos", sum.NewLots).
		Int("errores", len(sum.Failed)).
		Msg("carga inicial terminada")
	if len(sum.Failed) > 0 {
		os.Exit(1)
	}
}
