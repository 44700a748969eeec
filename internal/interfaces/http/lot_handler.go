package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// LotHandler registro de lotes.
type LotHandler struct {
	uc  *lot.UseCase
	log *logger.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *lot.UseCase, log *logger.Logger) *LotHandler {
	return &LotHandler{uc: uc, log: log}
}

// Register godoc
// @Summary      Registrar lote recibido
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterLotRequest  true  "product_id, lot_number, expires_at"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" || in.LotNumber == "" || in.ExpiresAt.IsZero() {
		return validation(c, "product_id, lot_number y expires_at son requeridos")
	}
	l, err := h.uc.Register(c.UserContext(), lot.RegisterInput{
		ProductID:      in.ProductID,
		LotNumber:      in.LotNumber,
		ManufacturedAt: in.ManufacturedAt,
		ExpiresAt:      in.ExpiresAt,
		QualityStatus:  in.QualityStatus,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(l))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	l, err := h.uc.FindLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewLotResponse(l))
}

// ListByProduct godoc
// @Summary      Lotes de un producto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {array}  dto.LotResponse
// @Router       /api/lots [get]
func (h *LotHandler) ListByProduct(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return validation(c, "product_id es requerido")
	}
	lots, err := h.uc.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.NewLotResponse(l))
	}
	return c.JSON(out)
}

// UpdateQuality godoc
// @Summary      Cambiar estado de calidad
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del lote"
// @Param        body  body  dto.UpdateQualityRequest  true  "LIBERADO | CUARENTENA | RECHAZADO"
// @Success      200   {object}  dto.LotResponse
// @Router       /api/lots/{id}/quality [patch]
func (h *LotHandler) UpdateQuality(c *fiber.Ctx) error {
	var in dto.UpdateQualityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	l, err := h.uc.SetQualityStatus(c.UserContext(), c.Params("id"), in.QualityStatus)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewLotResponse(l))
}
