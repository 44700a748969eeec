package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/kardex"
	"github.com/jhoicas/Almacen-api/internal/application/lot"
	"github.com/jhoicas/Almacen-api/internal/application/picking"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/application/reservation"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Almacen-api/pkg/jwt"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fakePDF struct{}

func (fakePDF) Generate(ports.PickListDocument) ([]byte, error) { return []byte("%PDF-1.4 test"), nil }

// newAPI app con el router completo sobre el almacenamiento en memoria.
// Ubicación A con los lotes L1 (vence primero) y L2 del producto p1, sin existencias.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	base := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	store.AddLocation(entity.Location{ID: "A", WarehouseID: "W1", Code: "A-01"})
	store.AddLot(entity.Lot{ID: "L1", ProductID: "p1", LotNumber: "L1", ExpiresAt: base, QualityStatus: entity.QualityReleased})
	store.AddLot(entity.Lot{ID: "L2", ProductID: "p1", LotNumber: "L2", ExpiresAt: base.AddDate(0, 6, 0), QualityStatus: entity.QualityReleased})

	log := logger.Nop()
	ledger := stock.NewLedger(store, nil, log)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LotUC:         lot.NewUseCase(store, log),
		Ledger:        ledger,
		Kardex:        kardex.NewService(store),
		ReservationUC: reservation.NewUseCase(store, log),
		Picking:       picking.NewEngine(store, ledger, nil, nil, nil, fakePDF{}, log),
		Log:           log,
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func adjust(t *testing.T, app *fiber.App, lotID string, delta int64) {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleSupervisor,
		dto.AdjustStockRequest{LocationID: "A", LotID: lotID, Delta: decimal.NewFromInt(delta), DocumentRef: "INV-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

func assertQty(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "esperado %d, obtenido %s", want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Existencias y kárdex
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_AjusteInicialYConsulta(t *testing.T) {
	app := newAPI(t)

	resp, body := call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleSupervisor,
		dto.AdjustStockRequest{LocationID: "A", LotID: "L1", Delta: decimal.NewFromInt(100)})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var entry dto.KardexEntryResponse
	decode(t, body, &entry)
	assert.Equal(t, entity.MovementInitialEntry, entry.MovementType)
	assertQty(t, 100, entry.ResultingBalance)

	resp, body = call(t, app, http.MethodGet, "/api/stock/A/L1", pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.StockRecordResponse
	decode(t, body, &rec)
	assertQty(t, 100, rec.PhysicalQty)
	assertQty(t, 100, rec.Available)
}

func TestStock_OperarioNoAjusta(t *testing.T) {
	app := newAPI(t)
	resp, _ := call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleOperario,
		dto.AdjustStockRequest{LocationID: "A", LotID: "L1", Delta: decimal.NewFromInt(5)})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStock_AjusteNegativoExcesivo_422(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 10)

	resp, body := call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleSupervisor,
		dto.AdjustStockRequest{LocationID: "A", LotID: "L1", Delta: decimal.NewFromInt(-50)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_ADJUSTMENT")
}

func TestStock_ReservaSinDisponible_409(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 10)

	resp, body := call(t, app, http.MethodPost, "/api/stock/reserve", pkgjwt.RoleSupervisor,
		dto.ReserveStockRequest{LocationID: "A", LotID: "L1", Quantity: decimal.NewFromInt(11)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")
}

func TestKardex_ListaRecientesPrimeroYReplay(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 100)
	adjust(t, app, "L1", -30)

	resp, body := call(t, app, http.MethodGet, "/api/kardex?lot_id=L1", pkgjwt.RoleSupervisor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page dto.KardexListResponse
	decode(t, body, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, entity.MovementAdjustmentOut, page.Items[0].MovementType)
	assert.Equal(t, entity.MovementInitialEntry, page.Items[1].MovementType)

	_, body = call(t, app, http.MethodGet, "/api/kardex?lot_id=L1&sort=asc", pkgjwt.RoleSupervisor, nil)
	decode(t, body, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, entity.MovementInitialEntry, page.Items[0].MovementType)

	resp, body = call(t, app, http.MethodGet, "/api/kardex/replay?location_id=A&lot_id=L1", pkgjwt.RoleSupervisor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var replay dto.KardexReplayResponse
	decode(t, body, &replay)
	assert.True(t, replay.Consistent)
	assert.Equal(t, 2, replay.Entries)
	assertQty(t, 70, replay.Replayed)
}

func TestKardex_FechaInvalida_400(t *testing.T) {
	app := newAPI(t)
	resp, _ := call(t, app, http.MethodGet, "/api/kardex?from=ayer", pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestReservation_CrearConsultarAnular(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 10)

	resp, body := call(t, app, http.MethodPost, "/api/reservations", pkgjwt.RoleSupervisor, dto.CreateReservationRequest{
		ExternalRef: "PED-1",
		Items:       []dto.ReservationItemRequest{{ProductID: "p1", SKU: "SKU-1", Quantity: decimal.NewFromInt(4)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var res dto.ReservationResponse
	decode(t, body, &res)
	assert.Equal(t, entity.ReservationActive, res.Status)

	_, body = call(t, app, http.MethodGet, "/api/stock/A/L1", pkgjwt.RoleSupervisor, nil)
	var rec dto.StockRecordResponse
	decode(t, body, &rec)
	assertQty(t, 4, rec.ReservedQty)

	resp, _ = call(t, app, http.MethodDelete, "/api/reservations/"+res.ID, pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = call(t, app, http.MethodGet, "/api/stock/A/L1", pkgjwt.RoleSupervisor, nil)
	decode(t, body, &rec)
	assertQty(t, 0, rec.ReservedQty)
}

func TestReservation_NoExiste_404(t *testing.T) {
	app := newAPI(t)
	resp, body := call(t, app, http.MethodGet, "/api/reservations/nope", pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

// ──────────────────────────────────────────────────────────────────────────────
// Picking
// ──────────────────────────────────────────────────────────────────────────────

func TestPicking_FlujoCompletoPorHTTP(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 50)
	adjust(t, app, "L2", 50)

	resp, body := call(t, app, http.MethodGet, "/api/picking/suggestion?product_id=p1&quantity=30", pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var sug dto.SuggestionResponse
	decode(t, body, &sug)
	require.True(t, sug.Found)
	assert.Equal(t, "L1", sug.Candidate.LotID)

	create := dto.CreatePickingRequest{
		SourceOrderID: "PED-100",
		Priority:      2,
		Items:         []dto.CreatePickingItemRequest{{ProductID: "p1", Quantity: decimal.NewFromInt(30)}},
	}
	resp, body = call(t, app, http.MethodPost, "/api/picking", pkgjwt.RoleSupervisor, create)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.PickingOrderResponse
	decode(t, body, &order)
	require.Len(t, order.Items, 1)
	item := order.Items[0]
	require.NotNil(t, item.SuggestedLotID)
	assert.Equal(t, "L1", *item.SuggestedLotID)
	assertQty(t, 30, item.ReservedQty)

	resp, body = call(t, app, http.MethodPost, "/api/picking", pkgjwt.RoleSupervisor, create)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "DUPLICATE_PICKING")

	// Sin cuerpo: se asigna al usuario del token.
	resp, body = call(t, app, http.MethodPost, "/api/picking/"+order.ID+"/assign", pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decode(t, body, &order)
	require.NotNil(t, order.AssignedTo)
	assert.Equal(t, testUserID, *order.AssignedTo)

	resp, body = call(t, app, http.MethodPost, "/api/picking/"+order.ID+"/start", pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodPost, "/api/picking/"+order.ID+"/complete", pkgjwt.RoleOperario, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "PENDING_ITEMS")

	resp, body = call(t, app, http.MethodPost, "/api/picking/"+order.ID+"/items/"+item.ID+"/pick", pkgjwt.RoleOperario,
		dto.RecordPickRequest{Quantity: decimal.NewFromInt(30)})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var pick dto.PickResultResponse
	decode(t, body, &pick)
	assert.Equal(t, entity.LineCompleted, pick.Item.LineState)
	assert.Nil(t, pick.Sibling)

	resp, body = call(t, app, http.MethodPost, "/api/picking/"+order.ID+"/complete", pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decode(t, body, &order)
	assert.Equal(t, entity.PickingCompleted, order.State)

	_, body = call(t, app, http.MethodGet, "/api/stock/A/L1", pkgjwt.RoleOperario, nil)
	var rec dto.StockRecordResponse
	decode(t, body, &rec)
	assertQty(t, 20, rec.PhysicalQty)
	assertQty(t, 0, rec.ReservedQty)

	resp, _ = call(t, app, http.MethodDelete, "/api/picking/"+order.ID, pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/api/picking/"+order.ID+"/picklist", pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestPicking_DetalleIncluyeLoteYUbicacion(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 10)
	resp, body := call(t, app, http.MethodPost, "/api/picking", pkgjwt.RoleSupervisor, dto.CreatePickingRequest{
		SourceOrderID: "PED-7",
		Items:         []dto.CreatePickingItemRequest{{ProductID: "p1", Quantity: decimal.NewFromInt(5)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.PickingOrderResponse
	decode(t, body, &order)

	resp, body = call(t, app, http.MethodGet, "/api/picking/"+order.ID, pkgjwt.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decode(t, body, &order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "A-01", order.Items[0].SuggestedLocationCode)
	assert.Equal(t, "L1", order.Items[0].SuggestedLotNumber)
}

func TestPicking_CancelarLiberaYListaExcluye(t *testing.T) {
	app := newAPI(t)
	adjust(t, app, "L1", 10)
	_, body := call(t, app, http.MethodPost, "/api/picking", pkgjwt.RoleSupervisor, dto.CreatePickingRequest{
		SourceOrderID: "PED-9",
		Items:         []dto.CreatePickingItemRequest{{ProductID: "p1", Quantity: decimal.NewFromInt(6)}},
	})
	var order dto.PickingOrderResponse
	decode(t, body, &order)

	resp, _ := call(t, app, http.MethodDelete, "/api/picking/"+order.ID, pkgjwt.RoleOperario, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, "/api/picking/"+order.ID, pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, app, http.MethodDelete, "/api/picking/"+order.ID, pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = call(t, app, http.MethodGet, "/api/stock/A/L1", pkgjwt.RoleOperario, nil)
	var rec dto.StockRecordResponse
	decode(t, body, &rec)
	assertQty(t, 0, rec.ReservedQty)

	_, body = call(t, app, http.MethodGet, "/api/picking", pkgjwt.RoleOperario, nil)
	var list dto.PickingListResponse
	decode(t, body, &list)
	assert.Empty(t, list.Items)
	assert.Equal(t, 0, list.Page.Total)

	_, body = call(t, app, http.MethodGet, "/api/picking?include_cancelled=true", pkgjwt.RoleOperario, nil)
	decode(t, body, &list)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].Cancelled)
}

// ──────────────────────────────────────────────────────────────────────────────
// Health
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_SinDependencias(t *testing.T) {
	app := newAPI(t)
	resp, _ := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
