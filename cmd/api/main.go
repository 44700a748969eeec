package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Almacen-api/internal/application/kardex"
	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/notification"
	"github.com/jhoicas/Almacen-api/internal/application/picking"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/application/reservation"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/clients"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/events"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/Almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		Insecure:    cfg.App.Env != "production",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	txRunner := postgres.NewTxRunner(pool)

	// Publicación de movimientos: sólo con brokers configurados.
	var publisher ports.MovementPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.MovementsTopic))
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.MovementsTopic).Msg("publicación de kárdex activa")
	}

	// Clientes externos. URL vacía = sin cliente.
	var (
		catalog ports.CatalogClient
		users   ports.UserDirectory
		orders  ports.OrderClient
	)
	if cfg.Clients.CatalogURL != "" {
		catalog = clients.NewCatalogClient(cfg.Clients.CatalogURL, cfg.Clients.Token, cfg.Clients.Timeout)
	}
	if cfg.Clients.UsersURL != "" {
		users = clients.NewUserDirectory(cfg.Clients.UsersURL, cfg.Clients.Token, cfg.Clients.Timeout)
	}
	if cfg.Clients.OrdersURL != "" {
		orders = clients.NewOrderClient(cfg.Clients.OrdersURL, cfg.Clients.Token, cfg.Clients.Timeout)
	}

	health := map[string]httpRouter.Pinger{"postgres": pool}
	var (
		notifier ports.Notifier
		workers  *sync.WaitGroup
		rdb      *redis.Client
	)
	if orders != nil {
		dispatcher := notification.NewDispatcher(orders)
		switch cfg.Notify.Mode {
		case config.NotifyRedis:
			rdb, err = queue.NewRedis(ctx, cfg.Notify.RedisURL)
			if err != nil {
				log.Fatal().Err(err).Msg("conexión a Redis")
			}
			notifier = queue.NewOutbox(rdb)
			worker := queue.NewWorker(rdb, dispatcher, cfg.Notify.MaxAttempts, log)
			workers = worker.Start(ctx, cfg.Notify.Workers)
			health["redis"] = redisPinger{rdb}
		default:
			notifier = dispatcher
		}
	} else {
		log.Warn().Msg("ORDERS_URL vacío: no se notificará al sistema de órdenes")
	}

	ledger := stock.NewLedger(txRunner, publisher, log)
	pickingEngine := picking.NewEngine(
		txRunner, ledger, notifier, catalog, users,
		infrapdf.NewMarotoPickListGenerator(), log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerFile,
			Path:     "docs",
			Title:    "Almacén API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		LotUC:         lot.NewUseCase(txRunner, log),
		Ledger:        ledger,
		Kardex:        kardex.NewService(txRunner),
		ReservationUC: reservation.NewUseCase(txRunner, log),
		Picking:       pickingEngine,
		Log:           log,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		Health:        health,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if workers != nil {
		workers.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

// redisPinger adapta el cliente de Redis a la firma Ping(ctx) error.
type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }
