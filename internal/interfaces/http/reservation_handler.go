package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/reservation"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ReservationHandler motor de reservas.
type ReservationHandler struct {
	uc  *reservation.UseCase
	log *logger.Logger
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *reservation.UseCase, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear reserva (todo o nada)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "external_ref, items"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]reservation.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, reservation.ItemInput{ProductID: it.ProductID, SKU: it.SKU, Quantity: it.Quantity})
	}
	res, err := h.uc.Create(c.UserContext(), reservation.CreateInput{ExternalRef: in.ExternalRef, Items: items})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReservationResponse(res))
}

// GetByID godoc
// @Summary      Obtener reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewReservationResponse(res))
}

// Remove godoc
// @Summary      Anular reserva (libera lo reservado)
// @Tags         reservations
// @Security     Bearer
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [delete]
func (h *ReservationHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
