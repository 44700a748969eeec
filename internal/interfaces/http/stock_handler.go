package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// StockHandler libro de existencias.
type StockHandler struct {
	ledger *stock.Ledger
	log    *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.Ledger, log *logger.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, log: log}
}

// Get godoc
// @Summary      Existencia de (ubicación, lote)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  path  string  true  "Ubicación"
// @Param        lot_id       path  string  true  "Lote"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{location_id}/{lot_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	rec, err := h.ledger.Get(c.UserContext(), c.Params("location_id"), c.Params("lot_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// ListByProduct godoc
// @Summary      Existencias de un producto por lote y ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {array}  dto.StockCandidateResponse
// @Router       /api/stock [get]
func (h *StockHandler) ListByProduct(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return validation(c, "product_id es requerido")
	}
	rows, err := h.ledger.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.StockCandidateResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewStockCandidateResponse(&rows[i]))
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste físico de inventario
// @Description  delta positivo = ENTRADA_AJUSTE (o ENTRADA_INICIAL si el registro es nuevo); negativo = SALIDA_AJUSTE.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "location_id, lot_id, delta"
// @Success      201   {object}  dto.KardexEntryResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.LocationID == "" || in.LotID == "" || in.Delta.IsZero() {
		return validation(c, "location_id, lot_id y delta distinto de cero son requeridos")
	}
	entry, err := h.ledger.AdjustPhysical(c.UserContext(), in.LocationID, in.LotID, in.Delta, stock.Movement{
		UserID:       GetUserID(c),
		DocumentType: entity.DocumentAdjustment,
		DocumentRef:  in.DocumentRef,
		UnitCost:     in.UnitCost,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewKardexEntryResponse(entry))
}

// Return godoc
// @Summary      Reingreso por devolución
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnStockRequest  true  "location_id, lot_id, quantity"
// @Success      201   {object}  dto.KardexEntryResponse
// @Router       /api/stock/returns [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.LocationID == "" || in.LotID == "" {
		return validation(c, "location_id y lot_id son requeridos")
	}
	entry, err := h.ledger.ReturnToStock(c.UserContext(), in.LocationID, in.LotID, in.Quantity, stock.Movement{
		UserID:       GetUserID(c),
		DocumentType: entity.DocumentReturn,
		DocumentRef:  in.DocumentRef,
		UnitCost:     in.UnitCost,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewKardexEntryResponse(entry))
}

// Reserve godoc
// @Summary      Reservar cantidad sobre (ubicación, lote)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.ReserveStockRequest  true  "location_id, lot_id, quantity"
// @Success      204
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.ledger.Reserve(c.UserContext(), in.LocationID, in.LotID, in.Quantity); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Release godoc
// @Summary      Liberar reserva sobre (ubicación, lote)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveStockRequest  true  "location_id, lot_id, quantity"
// @Success      200   {object}  map[string]string
// @Router       /api/stock/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	released, err := h.ledger.Release(c.UserContext(), in.LocationID, in.LotID, in.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"released": released})
}
