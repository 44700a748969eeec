package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Almacen-api/internal/application/kardex"
	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/picking"
	"github.com/jhoicas/Almacen-api/internal/application/reservation"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/pkg/jwt"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LotUC         *lot.UseCase
	Ledger        *stock.Ledger
	Kardex        *kardex.Service
	ReservationUC *reservation.UseCase
	Picking       *picking.Engine
	Log           *logger.Logger
	JWTSecret     string
	JWTIssuer     string
	// Health dependencias sondeadas por /health (opcional).
	Health map[string]Pinger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", Health(deps.Health))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	staff := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)
	anyone := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor, jwt.RoleOperario)

	// Lotes
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC, log)
	lots.Get("/", anyone, lotHandler.ListByProduct)
	lots.Get("/:id", anyone, lotHandler.GetByID)
	lots.Post("/", staff, lotHandler.Register)
	lots.Patch("/:id/quality", staff, lotHandler.UpdateQuality)

	// Existencias
	stockGroup := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger, log)
	stockGroup.Get("/", anyone, stockHandler.ListByProduct)
	stockGroup.Get("/:location_id/:lot_id", anyone, stockHandler.Get)
	stockGroup.Post("/adjustments", staff, stockHandler.Adjust)
	stockGroup.Post("/returns", staff, stockHandler.Return)
	stockGroup.Post("/reserve", staff, stockHandler.Reserve)
	stockGroup.Post("/release", staff, stockHandler.Release)

	// Kárdex (sólo lectura)
	kardexGroup := api.Group("/kardex", staff)
	kardexHandler := NewKardexHandler(deps.Kardex, log)
	kardexGroup.Get("/", kardexHandler.List)
	kardexGroup.Get("/replay", kardexHandler.Replay)

	// Reservas
	reservations := api.Group("/reservations", staff)
	reservationHandler := NewReservationHandler(deps.ReservationUC, log)
	reservations.Post("/", reservationHandler.Create)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Delete("/:id", reservationHandler.Remove)

	// Picking
	pick := api.Group("/picking")
	pickingHandler := NewPickingHandler(deps.Picking, log)
	pick.Get("/suggestion", anyone, pickingHandler.Suggest)
	pick.Get("/", anyone, pickingHandler.List)
	pick.Post("/", staff, pickingHandler.Create)
	pick.Get("/:id", anyone, pickingHandler.GetByID)
	pick.Get("/:id/picklist", anyone, pickingHandler.PickList)
	pick.Post("/:id/assign", anyone, pickingHandler.Assign)
	pick.Post("/:id/start", anyone, pickingHandler.Start)
	pick.Post("/:id/items/:item_id/pick", anyone, pickingHandler.Pick)
	pick.Post("/:id/complete", anyone, pickingHandler.Complete)
	pick.Delete("/:id", staff, pickingHandler.Cancel)
}
