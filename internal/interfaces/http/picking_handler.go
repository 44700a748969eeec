package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/picking"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// PickingHandler órdenes de picking: creación, flujo del operario y hoja imprimible.
type PickingHandler struct {
	engine *picking.Engine
	log    *logger.Logger
}

// NewPickingHandler construye el handler.
func NewPickingHandler(engine *picking.Engine, log *logger.Logger) *PickingHandler {
	return &PickingHandler{engine: engine, log: log}
}

// Suggest godoc
// @Summary      Sugerencia FEFO de origen
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        quantity    query  string  true  "Cantidad requerida"
// @Success      200  {object}  dto.SuggestionResponse
// @Router       /api/picking/suggestion [get]
func (h *PickingHandler) Suggest(c *fiber.Ctx) error {
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return validation(c, "quantity inválida")
	}
	cand, err := h.engine.Suggest(c.UserContext(), c.Query("product_id"), qty)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if cand == nil {
		return c.JSON(dto.SuggestionResponse{Found: false})
	}
	out := dto.NewStockCandidateResponse(cand)
	return c.JSON(dto.SuggestionResponse{Found: true, Candidate: &out})
}

// Create godoc
// @Summary      Crear orden de picking
// @Description  Con reservation_id adopta las líneas de la reserva; sin ella sugiere FEFO y reserva.
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePickingRequest  true  "source_order_id, items"
// @Success      201   {object}  dto.PickingOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/picking [post]
func (h *PickingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePickingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]picking.CreateItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, picking.CreateItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			StockRecordID: it.StockRecordID,
		})
	}
	order, err := h.engine.Create(c.UserContext(), picking.CreateInput{
		SourceOrderID: in.SourceOrderID,
		ReservationID: in.ReservationID,
		Priority:      in.Priority,
		Items:         items,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPickingOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes de picking
// @Description  Ordenadas por prioridad descendente y antigüedad. Excluye canceladas salvo include_cancelled=true.
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        state              query  string  false  "PENDING | IN_PROGRESS | COMPLETED"
// @Param        assigned_to        query  string  false  "Operario"
// @Param        include_cancelled  query  bool    false  "Incluir canceladas"
// @Param        limit              query  int     false  "Límite"  default(50)
// @Param        offset             query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PickingListResponse
// @Router       /api/picking [get]
func (h *PickingHandler) List(c *fiber.Ctx) error {
	f := repository.PickingFilter{
		State:            c.Query("state"),
		AssignedTo:       c.Query("assigned_to"),
		IncludeCancelled: c.QueryBool("include_cancelled", false),
		Limit:            c.QueryInt("limit", 0),
		Offset:           c.QueryInt("offset", 0),
	}
	orders, total, err := h.engine.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.PickingOrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, dto.NewPickingOrderResponse(o))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = len(orders)
	}
	return c.JSON(dto.PickingListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: f.Offset, Total: total},
	})
}

// GetByID godoc
// @Summary      Detalle de orden de picking
// @Description  Incluye nombres de producto, lote, ubicación y operario cuando están disponibles.
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/picking/{id} [get]
func (h *PickingHandler) GetByID(c *fiber.Ctx) error {
	view, err := h.engine.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(viewResponse(view))
}

func viewResponse(view *picking.OrderView) dto.PickingOrderResponse {
	out := dto.NewPickingOrderResponse(view.Order)
	if view.Worker != nil {
		out.WorkerName = view.Worker.FullName
	}
	for i := range out.Items {
		it := &out.Items[i]
		if p, ok := view.Products[it.ProductID]; ok {
			it.ProductName = p.Name
			it.SKU = p.SKU
		}
		if it.SuggestedLotID != nil {
			if lot, ok := view.Lots[*it.SuggestedLotID]; ok {
				it.SuggestedLotNumber = lot.LotNumber
			}
		}
		if it.SuggestedLocationID != nil {
			if loc, ok := view.Locations[*it.SuggestedLocationID]; ok {
				it.SuggestedLocationCode = loc.Code
			}
		}
	}
	return out
}

// Assign godoc
// @Summary      Asignar operario
// @Description  Sin worker_id se asigna al usuario del token.
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la orden"
// @Param        body  body  dto.AssignPickingRequest  false  "worker_id"
// @Success      200   {object}  dto.PickingOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/picking/{id}/assign [post]
func (h *PickingHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignPickingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	worker := in.WorkerID
	if worker == "" {
		worker = GetUserID(c)
	}
	order, err := h.engine.Assign(c.UserContext(), c.Params("id"), worker)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPickingOrderResponse(order))
}

// Start godoc
// @Summary      Iniciar picking
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/picking/{id}/start [post]
func (h *PickingHandler) Start(c *fiber.Ctx) error {
	order, err := h.engine.Start(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPickingOrderResponse(order))
}

// Pick godoc
// @Summary      Registrar pick sobre una línea
// @Description  Con un lote distinto al sugerido, divide la línea.
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "ID de la orden"
// @Param        item_id  path  string                 true  "ID de la línea"
// @Param        body     body  dto.RecordPickRequest  true  "quantity, confirmed_lot_id"
// @Success      200      {object}  dto.PickResultResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/picking/{id}/items/{item_id}/pick [post]
func (h *PickingHandler) Pick(c *fiber.Ctx) error {
	var in dto.RecordPickRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.engine.RecordPick(c.UserContext(), picking.PickInput{
		OrderID:             c.Params("id"),
		ItemID:              c.Params("item_id"),
		Quantity:            in.Quantity,
		ConfirmedLotID:      in.ConfirmedLotID,
		ConfirmedLocationID: in.ConfirmedLocationID,
		DeviationReason:     in.DeviationReason,
		Notes:               in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.PickResultResponse{Item: dto.NewPickingItemResponse(&res.Item)}
	if res.Sibling != nil {
		s := dto.NewPickingItemResponse(res.Sibling)
		out.Sibling = &s
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar picking y liquidar existencias
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/picking/{id}/complete [post]
func (h *PickingHandler) Complete(c *fiber.Ctx) error {
	order, err := h.engine.Complete(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPickingOrderResponse(order))
}

// Cancel godoc
// @Summary      Cancelar orden de picking
// @Description  Libera lo reservado. Cancelar dos veces no falla.
// @Tags         picking
// @Security     Bearer
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/picking/{id} [delete]
func (h *PickingHandler) Cancel(c *fiber.Ctx) error {
	if err := h.engine.Cancel(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PickList godoc
// @Summary      Hoja de picking en PDF
// @Tags         picking
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/picking/{id}/picklist [get]
func (h *PickingHandler) PickList(c *fiber.Ctx) error {
	pdf, err := h.engine.PickList(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="picking-`+c.Params("id")+`.pdf"`)
	return c.Send(pdf)
}
