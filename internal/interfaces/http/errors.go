package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// errorMapping sentinel de dominio → status y código. Se evalúa en orden: las variantes
// de conflicto van antes que ErrConflict.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidAdjustment, fiber.StatusUnprocessableEntity, "INVALID_ADJUSTMENT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicatePicking, fiber.StatusConflict, "DUPLICATE_PICKING"},
	{domain.ErrAlreadyAssigned, fiber.StatusConflict, "ALREADY_ASSIGNED"},
	{domain.ErrAlreadyStarted, fiber.StatusConflict, "ALREADY_STARTED"},
	{domain.ErrTerminalState, fiber.StatusConflict, "TERMINAL_STATE"},
	{domain.ErrPendingItems, fiber.StatusConflict, "PENDING_ITEMS"},
	{domain.ErrLotMismatch, fiber.StatusConflict, "LOT_MISMATCH"},
	{domain.ErrOverPick, fiber.StatusConflict, "OVER_PICK"},
	{domain.ErrDuplicateLot, fiber.StatusConflict, "DUPLICATE_LOT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// respondError traduce err a la respuesta HTTP. Los errores no clasificados se registran y
// se devuelven como 500 sin detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func validation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}
