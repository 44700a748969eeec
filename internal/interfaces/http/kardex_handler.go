package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/kardex"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// KardexHandler consulta del libro de movimientos. No expone escritura.
type KardexHandler struct {
	svc *kardex.Service
	log *logger.Logger
}

// NewKardexHandler construye el handler.
func NewKardexHandler(svc *kardex.Service, log *logger.Logger) *KardexHandler {
	return &KardexHandler{svc: svc, log: log}
}

// parseTime acepta RFC3339 o fecha (YYYY-MM-DD). endOfDay lleva una fecha sola al último instante del día.
func parseTime(s string, endOfDay bool) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

// List godoc
// @Summary      Consultar kárdex
// @Description  Más recientes primero salvo sort=asc.
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Producto"
// @Param        lot_id       query  string  false  "Lote"
// @Param        location_id  query  string  false  "Ubicación (origen o destino)"
// @Param        type         query  string  false  "Tipo de movimiento"
// @Param        from         query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        sort         query  string  false  "asc | desc"  default(desc)
// @Param        limit        query  int     false  "Límite"      default(100)
// @Param        offset       query  int     false  "Offset"      default(0)
// @Success      200  {object}  dto.KardexListResponse
// @Router       /api/kardex [get]
func (h *KardexHandler) List(c *fiber.Ctx) error {
	from, ok := parseTime(c.Query("from"), false)
	if !ok {
		return validation(c, "from inválido")
	}
	to, ok := parseTime(c.Query("to"), true)
	if !ok {
		return validation(c, "to inválido")
	}
	sort := c.Query("sort", "desc")
	if sort != "asc" && sort != "desc" {
		return validation(c, "sort debe ser asc o desc")
	}
	f := repository.KardexFilter{
		ProductID:    c.Query("product_id"),
		LotID:        c.Query("lot_id"),
		LocationID:   c.Query("location_id"),
		MovementType: c.Query("type"),
		From:         from,
		To:           to,
		Descending:   sort == "desc",
		Limit:        c.QueryInt("limit", 0),
		Offset:       c.QueryInt("offset", 0),
	}
	entries, err := h.svc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.KardexEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewKardexEntryResponse(e))
	}
	return c.JSON(dto.KardexListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	})
}

// Replay godoc
// @Summary      Auditoría: reconstruir saldo desde el kárdex
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "Ubicación"
// @Param        lot_id       query  string  true  "Lote"
// @Success      200  {object}  dto.KardexReplayResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/kardex/replay [get]
func (h *KardexHandler) Replay(c *fiber.Ctx) error {
	loc, lotID := c.Query("location_id"), c.Query("lot_id")
	if loc == "" || lotID == "" {
		return validation(c, "location_id y lot_id son requeridos")
	}
	res, err := h.svc.Replay(c.UserContext(), loc, lotID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.KardexReplayResponse{
		StockRecordID: res.StockRecordID,
		Recorded:      res.Recorded,
		Replayed:      res.Replayed,
		Entries:       res.Entries,
		BrokenAt:      res.BrokenAt,
		Consistent:    res.Consistent,
	})
}
